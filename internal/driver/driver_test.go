package driver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
)

func helloTree() *ast.Tree {
	b := ast.NewBuilder(ast.Hints{})
	main := b.Main("main", "int", nil,
		b.LocalVar("int", "x"),
		b.Assign(ast.KindAssign, "x", b.Binary(ast.KindMul, b.Number("6"), b.Number("7"))),
		b.Stmt(b.Call("printf", b.Str("x = {}\\n"), b.Ident("x"))),
		b.Return(b.Number("0")),
	)
	return b.Finish(b.Program(main))
}

func undefinedTree() *ast.Tree {
	b := ast.NewBuilder(ast.Hints{})
	main := b.Main("main", "void", nil,
		b.At(3).Assign(ast.KindAssign, "y", b.Number("1")),
	)
	return b.Finish(b.Program(main))
}

func writeTree(t *testing.T, dir, name string, tree *ast.Tree) string {
	t.Helper()
	path := filepath.Join(dir, name)
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
	return path
}

func TestCompileFileProducesAssembly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"hello.json", "hello.mp"} {
		path := writeTree(t, dir, name, helloTree())

		var events []PhaseEvent
		res, err := CompileFile(context.Background(), path, Options{
			Observer: func(ev PhaseEvent) { events = append(events, ev) },
		})
		if err != nil {
			t.Fatalf("%s: compile: %v", name, err)
		}
		for _, want := range []string{"main:", "bl main1", "mul w", `.asciz "x = %d\n"`, "svc #0"} {
			if !strings.Contains(res.Assembly, want) {
				t.Fatalf("%s: assembly missing %q:\n%s", name, want, res.Assembly)
			}
		}
		if res.Cached || res.Tree == nil || res.Sema == nil {
			t.Fatalf("%s: unexpected result %+v", name, res)
		}
		for _, phase := range []string{PhaseLoad, PhaseAnalyze, PhaseGenerate} {
			if _, ok := res.Timings.Phase(phase); !ok {
				t.Fatalf("%s: no timing for %s", name, phase)
			}
		}
		if len(events) != 6 || events[0].Status != PhaseStart || events[5].Name != PhaseGenerate {
			t.Fatalf("%s: unexpected phase events %+v", name, events)
		}
	}
}

func TestCompileFileReportsPathAndLine(t *testing.T) {
	dir := t.TempDir()
	path := writeTree(t, dir, "bad.json", undefinedTree())

	bag := diag.NewBag(10)
	_, err := CompileFile(context.Background(), path, Options{Reporter: diag.BagReporter{Bag: bag}})
	de, ok := diag.AsError(err)
	if !ok {
		t.Fatalf("expected diagnostic error, got %v", err)
	}
	if de.Diag.Code != diag.SemaUnresolvedSymbol || de.Diag.Path != path || de.Diag.Line != 3 {
		t.Fatalf("unexpected diagnostic %+v", de.Diag)
	}
	if bag.Len() != 1 || !bag.HasErrors() {
		t.Fatalf("reporter did not receive the error: %+v", bag.Items())
	}
}

func TestCheckSkipsGeneration(t *testing.T) {
	path := writeTree(t, t.TempDir(), "hello.json", helloTree())
	res, err := Check(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Assembly != "" || res.Sema == nil {
		t.Fatalf("check produced %+v", res)
	}
	if _, ok := res.Timings.Phase(PhaseGenerate); ok {
		t.Fatalf("check must not run the generate phase")
	}
}

func TestUnknownSuffixIsLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := CompileFile(context.Background(), path, Options{})
	de, ok := diag.AsError(err)
	if !ok || de.Diag.Code != diag.IOLoadFailed {
		t.Fatalf("expected %s, got %v", diag.IOLoadFailed.ID(), err)
	}
}

func TestCompileFileUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeTree(t, dir, "hello.json", helloTree())
	cache, err := OpenDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	opts := Options{Cache: cache}
	first, err := CompileFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := CompileFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Cached || !second.Cached {
		t.Fatalf("cached flags: first=%v second=%v", first.Cached, second.Cached)
	}
	if first.Assembly != second.Assembly {
		t.Fatalf("cached assembly differs")
	}

	opts.MaxRegisters = 4
	third, err := CompileFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if third.Cached {
		t.Fatalf("changed options must miss the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	fourth, err := CompileFile(context.Background(), path, Options{Cache: cache})
	if err != nil {
		t.Fatalf("fourth: %v", err)
	}
	if fourth.Cached {
		t.Fatalf("dropped cache must miss")
	}
}

func TestCacheKeyDependsOnOptions(t *testing.T) {
	data := []byte(`{"kind":"program"}`)
	a := CacheKey(data, Options{})
	if a != CacheKey(data, Options{}) {
		t.Fatalf("cache key is not deterministic")
	}
	if a == CacheKey(data, Options{Annotate: true}) {
		t.Fatalf("annotate must change the key")
	}
	if a == CacheKey([]byte(`{"kind":"program","line":2}`), Options{}) {
		t.Fatalf("tree bytes must change the key")
	}
}

func TestTimingDiagnosticCarriesJSON(t *testing.T) {
	path := writeTree(t, t.TempDir(), "hello.json", helloTree())
	res, err := CompileFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaInfo, 1, "filler"))
	AppendTimings(bag, "", path, res.Timings)
	if bag.Len() != 2 {
		t.Fatalf("timings were not appended to a full bag")
	}
	d := bag.Items()[1]
	if d.Code != diag.ObsTimings || len(d.Notes) != 1 {
		t.Fatalf("unexpected timing diagnostic %+v", d)
	}
	var payload timingPayload
	if err := json.Unmarshal([]byte(d.Notes[0].Msg), &payload); err != nil {
		t.Fatalf("note is not JSON: %v", err)
	}
	if payload.Kind != "pipeline" || len(payload.Phases) != 3 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvCacheDir, "/tmp/kestrel-cache")
	t.Setenv(EnvNoCache, "1")
	t.Setenv(EnvJobs, "3")
	e := LoadEnv()
	if e.CacheDir != "/tmp/kestrel-cache" || !e.NoCache || e.Jobs != 3 {
		t.Fatalf("unexpected env %+v", e)
	}
	if e.TraceLevel != "phase" || e.Color != "auto" {
		t.Fatalf("defaults not applied: %+v", e)
	}
	cache, err := e.OpenCache()
	if err != nil || cache != nil {
		t.Fatalf("KESTREL_NO_CACHE must disable the cache, got %v %v", cache, err)
	}
}

func TestLoadEnvSeesLaterChanges(t *testing.T) {
	t.Setenv(EnvCacheDir, "/tmp/kestrel-first")
	t.Setenv(EnvJobs, "2")
	if e := LoadEnv(); e.CacheDir != "/tmp/kestrel-first" || e.Jobs != 2 {
		t.Fatalf("unexpected env %+v", e)
	}
	t.Setenv(EnvCacheDir, "/tmp/kestrel-second")
	t.Setenv(EnvJobs, "5")
	if e := LoadEnv(); e.CacheDir != "/tmp/kestrel-second" || e.Jobs != 5 {
		t.Fatalf("LoadEnv returned stale values %+v", e)
	}
}
