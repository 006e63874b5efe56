package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the kestrel CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI. It also salts the
	// compile cache key, so bump it whenever emitted assembly changes.
	Version = "0.3.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Info is a trimmed snapshot of the build metadata.
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

// Current collects the metadata, substituting "dev" for an empty version.
func Current() Info {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return Info{
		Version:    v,
		GitCommit:  strings.TrimSpace(GitCommit),
		GitMessage: strings.TrimSpace(GitMessage),
		BuildDate:  strings.TrimSpace(BuildDate),
	}
}

// Colored renders major.minor.patch with one color per component; the
// pre-release suffix stays plain. Unparseable versions are returned as is.
func Colored(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	out := versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
