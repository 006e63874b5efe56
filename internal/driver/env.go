package driver

import (
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"
)

// Environment variables understood by kestrel.
const (
	EnvCacheDir   = "KESTREL_CACHE_DIR"
	EnvNoCache    = "KESTREL_NO_CACHE"
	EnvColor      = "KESTREL_COLOR"
	EnvTrace      = "KESTREL_TRACE"
	EnvTraceLevel = "KESTREL_TRACE_LEVEL"
	EnvJobs       = "KESTREL_JOBS"
)

// Env is the environment layer of the configuration. Flags given on the
// command line win over it; kestrel.toml loses to both.
type Env struct {
	CacheDir   string
	NoCache    bool
	Color      string
	Trace      string
	TraceLevel string
	Jobs       int
}

// LoadEnv reads the KESTREL_* variables. env caches os.Environ, so the
// snapshot is refreshed on every call.
func LoadEnv() Env {
	env.Load()
	return Env{
		CacheDir:   env.Str(EnvCacheDir, defaultCacheDir()),
		NoCache:    env.Bool(EnvNoCache),
		Color:      env.Str(EnvColor, "auto"),
		Trace:      env.Str(EnvTrace),
		TraceLevel: env.Str(EnvTraceLevel, "phase"),
		Jobs:       env.Int(EnvJobs, 0),
	}
}

// OpenCache opens the cache the environment asks for, or returns nil when
// caching is off.
func (e Env) OpenCache() (*DiskCache, error) {
	if e.NoCache || e.CacheDir == "" {
		return nil, nil
	}
	return OpenDiskCache(e.CacheDir)
}

func defaultCacheDir() string {
	base := env.Str("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "kestrel")
}
