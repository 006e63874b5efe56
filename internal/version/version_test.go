package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if got := Current().Version; got != Version {
		t.Errorf("Current().Version = %q, want %q", got, Version)
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origGitCommit, origBuildDate
	}()

	// simulating build-time ldflags
	Version = " 1.2.3 "
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	info := Current()
	if info.Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", info.Version, "1.2.3")
	}
	if info.GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q, want %q", info.GitCommit, "abc123def456")
	}
	if info.BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q, want %q", info.BuildDate, "2024-01-15T10:30:00Z")
	}
}

func TestVersion_EmptyFallsBackToDev(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "  "
	if got := Current().Version; got != "dev" {
		t.Errorf("Current().Version = %q, want dev", got)
	}
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	cases := map[string]string{
		"0.3.0-dev":            "0.3.0-dev",
		"1.2.3":                "1.2.3",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"nightly":              "nightly",
	}
	for in, want := range cases {
		if got := Colored(in); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}

func BenchmarkCurrent(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Current()
	}
}
