package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"kestrel/internal/ast"
	"kestrel/internal/buildpipeline"
	"kestrel/internal/driver"
	"kestrel/internal/version"
)

func helloTree() *ast.Tree {
	b := ast.NewBuilder(ast.Hints{})
	main := b.Main("main", "int", nil,
		b.LocalVar("int", "x"),
		b.Assign(ast.KindAssign, "x", b.Number("5")),
		b.Stmt(b.Call("printf", b.Str("{}\\n"), b.Ident("x"))),
		b.Return(b.Number("0")),
	)
	return b.Finish(b.Program(main))
}

func writeTree(t *testing.T, path string, tree *ast.Tree) {
	t.Helper()
	format, err := ast.FormatForPath(path)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := ast.Encode(f, tree, format); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

// freshSession resets the global session so each test sees its own env,
// with the cache pointed at a temporary directory.
func freshSession(t *testing.T) {
	t.Helper()
	t.Setenv(driver.EnvNoCache, "1")
	t.Setenv(driver.EnvCacheDir, filepath.Join(t.TempDir(), "cache"))
	current = nil
	t.Cleanup(func() { current = nil })
}

func prepare(cmd *cobra.Command) (*bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetContext(context.Background())
	return &out, &errOut
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}

func TestPrintStageTimingsKeepsPipelineOrder(t *testing.T) {
	var timings buildpipeline.Timings
	timings.Set(buildpipeline.StageGenerate, 2*time.Millisecond)
	timings.Set(buildpipeline.StageLoad, time.Millisecond)

	var buf bytes.Buffer
	printStageTimings(&buf, timings)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "load") || !strings.HasPrefix(lines[1], "generate") {
		t.Fatalf("unexpected order: %q", lines)
	}
	if !strings.Contains(lines[1], "2.0 ms") {
		t.Fatalf("unexpected duration: %q", lines[1])
	}
}

func TestRenderVersionJSONOmitsUnrequestedFields(t *testing.T) {
	var buf bytes.Buffer
	info := version.Info{Version: "1.2.3"}
	if err := renderVersionJSON(&buf, info, versionOptions{format: "json", showHash: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["tool"] != "kestrel" || got["version"] != "1.2.3" || got["git_commit"] != "unknown" {
		t.Fatalf("unexpected payload: %v", got)
	}
	if _, ok := got["build_date"]; ok {
		t.Fatalf("build_date should be omitted: %v", got)
	}
}

func TestCompileWritesNextToInput(t *testing.T) {
	freshSession(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "hello.json")
	writeTree(t, in, helloTree())

	out, _ := prepare(compileCmd)
	if err := compileCmd.Flags().Set("output", ""); err != nil {
		t.Fatal(err)
	}
	if err := runCompile(compileCmd, []string{in}); err != nil {
		t.Fatalf("compile: %v", err)
	}
	asm, err := os.ReadFile(filepath.Join(dir, "hello.s"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(asm), "main1:") {
		t.Fatalf("missing function label:\n%s", asm)
	}
	if !strings.Contains(out.String(), "compiled") {
		t.Fatalf("missing summary line: %q", out.String())
	}
}

func TestCompileReportsDiagnostics(t *testing.T) {
	freshSession(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.json")
	b := ast.NewBuilder(ast.Hints{})
	writeTree(t, in, b.Finish(b.Program(b.Main("main", "void", nil,
		b.At(4).Assign(ast.KindAssign, "missing", b.Number("1")),
	))))

	_, errOut := prepare(compileCmd)
	if err := compileCmd.Flags().Set("output", "-"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = compileCmd.Flags().Set("output", "") })
	err := runCompile(compileCmd, []string{in})
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	if !strings.Contains(errOut.String(), "missing") {
		t.Fatalf("diagnostic not printed: %q", errOut.String())
	}
}

func TestConvertRoundTrip(t *testing.T) {
	freshSession(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "hello.json")
	mp := filepath.Join(dir, "hello.msgpack")
	writeTree(t, in, helloTree())

	prepare(convertCmd)
	if err := runConvert(convertCmd, []string{in, mp}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	back, err := driver.LoadTree(mp)
	if err != nil {
		t.Fatalf("load converted tree: %v", err)
	}
	if back.Len() != helloTree().Len() {
		t.Fatalf("node count changed: %d vs %d", back.Len(), helloTree().Len())
	}
}

func TestBuildWithoutManifest(t *testing.T) {
	freshSession(t)
	t.Chdir(t.TempDir())
	prepare(buildCmd)
	if err := buildCmd.Flags().Set("ui", "off"); err != nil {
		t.Fatal(err)
	}
	err := runBuild(buildCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "no kestrel.toml") {
		t.Fatalf("expected missing manifest error, got %v", err)
	}
}

func TestCleanRemovesOutputsAndCache(t *testing.T) {
	freshSession(t)
	root := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	t.Setenv(driver.EnvCacheDir, cacheDir)
	manifest := "[package]\nname = \"demo\"\n\n[build]\ninputs = [\"*.json\"]\nout_dir = \"out\"\n"
	if err := os.WriteFile(filepath.Join(root, "kestrel.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "out"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "out", "a.s"), []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _ := prepare(cleanCmd)
	if err := runClean(cleanCmd, []string{root}); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "out")); !os.IsNotExist(err) {
		t.Fatalf("out dir still present: %v", err)
	}
	if info, err := os.Stat(cacheDir); err != nil || !info.IsDir() {
		t.Fatalf("cache dir should be recreated empty: %v", err)
	}
	if !strings.Contains(out.String(), "removed out") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
