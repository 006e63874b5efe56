package project

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// NoManifestMessage is printed by commands that need a project.
const NoManifestMessage = "no kestrel.toml found\nplease run inside a project or pass the tree explicitly, e.g.:\n  kestrel compile path/to/prog.json"

// Manifest is a loaded kestrel.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of kestrel.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig drives `kestrel build`.
type BuildConfig struct {
	// Inputs are glob patterns relative to the project root.
	Inputs       []string `toml:"inputs"`
	OutDir       string   `toml:"out_dir"`
	Jobs         int      `toml:"jobs"`
	MaxRegisters int      `toml:"max_registers"`
	Cache        bool     `toml:"cache"`
	Annotate     bool     `toml:"annotate"`
}

const defaultOutDir = "build"

// Load finds kestrel.toml above startDir and parses it. ok is false when
// there is no manifest.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadFile(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadFile parses one manifest and applies defaults.
func LoadFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("build") {
		return nil, fmt.Errorf("%s: missing [build]", path)
	}
	if !meta.IsDefined("build", "inputs") || len(cfg.Build.Inputs) == 0 {
		return nil, fmt.Errorf("%s: missing [build].inputs", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if cfg.Build.Jobs < 0 {
		return nil, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if cfg.Build.MaxRegisters < 0 {
		return nil, fmt.Errorf("%s: [build].max_registers must not be negative", path)
	}
	if !meta.IsDefined("build", "cache") {
		cfg.Build.Cache = true
	}
	if strings.TrimSpace(cfg.Build.OutDir) == "" {
		cfg.Build.OutDir = defaultOutDir
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// Inputs expands [build].inputs into sorted, de-duplicated absolute paths.
// A pattern matching nothing is an error.
func (m *Manifest) Inputs() ([]string, error) {
	var out []string
	for _, pattern := range m.Config.Build.Inputs {
		full := filepath.Join(m.Root, filepath.FromSlash(pattern))
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("%s: bad [build].inputs pattern %q: %w", m.Path, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: [build].inputs pattern %q matches no files", m.Path, pattern)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// OutDir returns the absolute output directory.
func (m *Manifest) OutDir() string {
	if filepath.IsAbs(m.Config.Build.OutDir) {
		return m.Config.Build.OutDir
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Build.OutDir))
}
