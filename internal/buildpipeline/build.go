// Package buildpipeline compiles many tree files concurrently and reports
// per-file progress.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"kestrel/internal/diag"
	"kestrel/internal/driver"
	"kestrel/internal/observ"
	"kestrel/internal/trace"
)

// Request configures one batch build.
type Request struct {
	Files []string
	// OutDir receives one .s file per input.
	OutDir string
	// BaseDir shortens the file names carried by events.
	BaseDir string
	// Jobs bounds concurrency; 0 means GOMAXPROCS.
	Jobs int
	// Compile is passed to driver.CompileFile; its Reporter and Observer
	// are replaced per file.
	Compile  driver.Options
	Progress ProgressSink
	// MaxDiagnostics caps the merged bag (0 = diag default).
	MaxDiagnostics int
}

// FileResult is the outcome for one input.
type FileResult struct {
	Path    string
	Output  string
	Cached  bool
	Timings observ.Report
	Err     error
}

// Result aggregates a build.
type Result struct {
	Files   []FileResult
	Bag     *diag.Bag
	Timings Timings
}

// Failed counts inputs that did not produce an output.
func (r Result) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// ErrBuildFailed is wrapped by the error Build returns when any input fails.
var ErrBuildFailed = errors.New("build failed")

// Build compiles every input. A failing input does not stop the others;
// the merged diagnostics are sorted by path and line. Only cancellation
// aborts the whole build.
func Build(ctx context.Context, req *Request) (Result, error) {
	if req == nil || len(req.Files) == 0 {
		return Result{Bag: diag.NewBag(0)}, fmt.Errorf("no input files")
	}
	result := Result{Bag: diag.NewBag(req.MaxDiagnostics)}
	if err := checkOutputs(req); err != nil {
		return result, err
	}
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return result, diag.Errorf(diag.IOWrite, 0, "create output dir %s: %v", req.OutDir, err)
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	defer span.End("")

	for _, f := range req.Files {
		emit(req.Progress, Event{File: DisplayName(f, req.BaseDir), Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	files := make([]FileResult, len(req.Files))
	bags := make([]*diag.Bag, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i, path := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			bags[i] = diag.NewBag(req.MaxDiagnostics)
			files[i] = buildOne(gctx, req, path, bags[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	for i := range files {
		result.Bag.Merge(bags[i])
		for _, p := range files[i].Timings.Phases {
			result.Timings.Add(stageOf(p.Name), time.Duration(p.DurationMS*float64(time.Millisecond)))
		}
	}
	result.Bag.Sort()
	result.Files = files

	if failed := result.Failed(); failed > 0 {
		span.WithExtra("failed", fmt.Sprint(failed))
		return result, fmt.Errorf("%w: %d of %d files have errors", ErrBuildFailed, failed, len(files))
	}
	return result, nil
}

func buildOne(ctx context.Context, req *Request, path string, bag *diag.Bag) FileResult {
	name := DisplayName(path, req.BaseDir)
	out := FileResult{Path: path, Output: OutputPath(req.OutDir, path)}

	opts := req.Compile
	opts.Reporter = diag.BagReporter{Bag: bag}
	opts.Observer = func(ev driver.PhaseEvent) {
		evt := Event{File: name, Stage: stageOf(ev.Name), Status: StatusWorking}
		if ev.Status == driver.PhaseEnd {
			if ev.Err != nil {
				evt.Status, evt.Err = StatusError, ev.Err
			} else {
				evt.Status = StatusDone
			}
			evt.Elapsed = ev.Elapsed
		}
		emit(req.Progress, evt)
	}

	res, err := driver.CompileFile(ctx, path, opts)
	if err != nil {
		out.Err = err
		return out
	}
	out.Cached = res.Cached
	out.Timings = res.Timings

	emit(req.Progress, Event{File: name, Stage: StageWrite, Status: StatusWorking})
	start := time.Now()
	if err := os.WriteFile(out.Output, []byte(res.Assembly), 0o644); err != nil {
		out.Err = diag.Errorf(diag.IOWrite, 0, "write %s: %v", out.Output, err)
		diag.ReportError(opts.Reporter, out.Err, diag.IOWrite, path)
		emit(req.Progress, Event{File: name, Stage: StageWrite, Status: StatusError, Err: out.Err})
		return out
	}
	status := StatusDone
	if res.Cached {
		status = StatusCached
	}
	emit(req.Progress, Event{File: name, Stage: StageWrite, Status: status, Elapsed: time.Since(start)})
	return out
}

// checkOutputs rejects two inputs that would write the same .s file.
func checkOutputs(req *Request) error {
	seen := make(map[string]string, len(req.Files))
	for _, f := range req.Files {
		o := filepath.Clean(OutputPath(req.OutDir, f))
		if prev, ok := seen[o]; ok {
			return fmt.Errorf("inputs %s and %s both write %s", prev, f, o)
		}
		seen[o] = f
	}
	return nil
}
