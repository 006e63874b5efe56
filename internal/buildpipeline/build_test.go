package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/driver"
)

func writeProgram(t *testing.T, path string, ok bool) {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{})
	var body []ast.NodeID
	if ok {
		body = append(body, b.Stmt(b.Call("printf", b.Str("ok\\n"))))
	} else {
		body = append(body, b.At(2).Break())
	}
	tree := b.Finish(b.Program(b.Main("main", "void", nil, body...)))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := ast.Encode(f, tree, ast.FormatJSON); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestBuildWritesAssemblyPerInput(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.json", "b.json", "c.json"} {
		p := filepath.Join(dir, name)
		writeProgram(t, p, true)
		files = append(files, p)
	}
	sink := &RecordingSink{}
	res, err := Build(context.Background(), &Request{
		Files:    files,
		OutDir:   filepath.Join(dir, "out"),
		BaseDir:  dir,
		Jobs:     2,
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, f := range res.Files {
		data, err := os.ReadFile(f.Output)
		if err != nil {
			t.Fatalf("missing output for %s: %v", f.Path, err)
		}
		if !strings.Contains(string(data), "bl main1") {
			t.Fatalf("%s: unexpected assembly:\n%s", f.Output, data)
		}
	}
	if got := filepath.Base(res.Files[1].Output); got != "b.s" {
		t.Fatalf("output name = %q", got)
	}
	if !res.Timings.Has(StageAnalyze) {
		t.Fatalf("no analyze timing recorded")
	}

	done := map[string]bool{}
	for _, ev := range sink.Events() {
		if ev.Stage == StageWrite && ev.Status == StatusDone {
			done[ev.File] = true
		}
	}
	for _, name := range []string{"a.json", "b.json", "c.json"} {
		if !done[name] {
			t.Fatalf("no write/done event for %s in %+v", name, sink.Events())
		}
	}
}

func TestBuildCollectsFailuresWithoutStoppingOthers(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	writeProgram(t, good, true)
	writeProgram(t, bad, false)

	res, err := Build(context.Background(), &Request{
		Files:  []string{bad, good},
		OutDir: filepath.Join(dir, "out"),
	})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("expected ErrBuildFailed, got %v", err)
	}
	if res.Failed() != 1 {
		t.Fatalf("failed = %d", res.Failed())
	}
	if _, statErr := os.Stat(res.Files[1].Output); statErr != nil {
		t.Fatalf("good input was not written: %v", statErr)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaBreakOutsideLoop || items[0].Path != bad || items[0].Line != 2 {
		t.Fatalf("unexpected diagnostics %+v", items)
	}
}

func TestBuildRejectsOutputCollision(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"x", "y"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	_, err := Build(context.Background(), &Request{
		Files:  []string{filepath.Join(dir, "x", "p.json"), filepath.Join(dir, "y", "p.mp")},
		OutDir: dir,
	})
	if err == nil || !strings.Contains(err.Error(), "both write") {
		t.Fatalf("expected collision error, got %v", err)
	}
}

func TestBuildReportsCachedFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "p.json")
	writeProgram(t, p, true)
	cache, err := driver.OpenDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	req := &Request{Files: []string{p}, OutDir: filepath.Join(dir, "out"), Compile: driver.Options{Cache: cache}}
	if _, err := Build(context.Background(), req); err != nil {
		t.Fatalf("first build: %v", err)
	}
	sink := &RecordingSink{}
	req.Progress = sink
	res, err := Build(context.Background(), req)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if !res.Files[0].Cached {
		t.Fatalf("second build did not hit the cache")
	}
	events := sink.Events()
	last := events[len(events)-1]
	if last.Stage != StageWrite || last.Status != StatusCached {
		t.Fatalf("last event = %+v", last)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("/p/trees/a.json", "/p"); got != "trees/a.json" {
		t.Fatalf("DisplayName = %q", got)
	}
	if got := DisplayName("/q/a.json", "/p"); got != "/q/a.json" {
		t.Fatalf("outside base = %q", got)
	}
	if got := OutputPath("/out", "/p/prog.ast.mp"); got != "/out/prog.ast.s" {
		t.Fatalf("OutputPath = %q", got)
	}
}
