package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadFindsManifestAboveStartDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[package]
name = "demo"

[build]
inputs = ["trees/*.json", "trees/a.json"]
jobs = 2
`)
	writeFile(t, filepath.Join(root, "trees", "a.json"), "{}")
	writeFile(t, filepath.Join(root, "trees", "b.json"), "{}")
	nested := filepath.Join(root, "trees", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if m.Config.Package.Name != "demo" || m.Config.Build.Jobs != 2 {
		t.Fatalf("unexpected config %+v", m.Config)
	}
	if !m.Config.Build.Cache {
		t.Fatalf("cache must default to true")
	}
	if got, want := m.OutDir(), filepath.Join(m.Root, "build"); got != want {
		t.Fatalf("OutDir = %q, want %q", got, want)
	}
	inputs, err := m.Inputs()
	if err != nil {
		t.Fatalf("inputs: %v", err)
	}
	if len(inputs) != 2 || filepath.Base(inputs[0]) != "a.json" || filepath.Base(inputs[1]) != "b.json" {
		t.Fatalf("unexpected inputs %v", inputs)
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil || ok {
		t.Fatalf("expected no manifest, got ok=%v err=%v", ok, err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"no package", "[build]\ninputs = [\"a.json\"]\n", "missing [package]"},
		{"no name", "[package]\n[build]\ninputs = [\"a.json\"]\n", "missing [package].name"},
		{"no build", "[package]\nname = \"x\"\n", "missing [build]"},
		{"no inputs", "[package]\nname = \"x\"\n[build]\njobs = 1\n", "missing [build].inputs"},
		{"unknown key", "[package]\nname = \"x\"\n[build]\ninputs = [\"a\"]\ncolour = true\n", "unknown key build.colour"},
		{"negative jobs", "[package]\nname = \"x\"\n[build]\ninputs = [\"a\"]\njobs = -1\n", "jobs must not be negative"},
		{"bad toml", "[package\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tc.content)
			_, err := LoadFile(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestInputsPatternWithoutMatches(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ManifestName)
	writeFile(t, path, "[package]\nname = \"x\"\n[build]\ninputs = [\"missing/*.json\"]\n")
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := m.Inputs(); err == nil || !strings.Contains(err.Error(), "matches no files") {
		t.Fatalf("expected no-match error, got %v", err)
	}
}

func TestDigestCombine(t *testing.T) {
	a, b := Hash([]byte("a")), Hash([]byte("b"))
	if Combine(a, b) == Combine(b, a) {
		t.Fatalf("combine must be order sensitive")
	}
	if a.IsZero() || !(Digest{}).IsZero() {
		t.Fatalf("IsZero is wrong")
	}
	if len(a.String()) != 64 {
		t.Fatalf("hex digest has length %d", len(a.String()))
	}
}
