package driver

import (
	"context"
	"strings"
	"time"

	"kestrel/internal/ast"
	"kestrel/internal/backend/arm64"
	"kestrel/internal/diag"
	"kestrel/internal/observ"
	"kestrel/internal/project"
	"kestrel/internal/sema"
	"kestrel/internal/trace"
)

// CompileFile runs load, analysis and code generation for one tree file.
// On failure the returned error is a *diag.Error carrying path, and it has
// already been passed to opts.Reporter.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	return run(ctx, path, opts, true)
}

// Check loads and analyses path without generating code.
func Check(ctx context.Context, path string, opts Options) (*Result, error) {
	return run(ctx, path, opts, false)
}

type compilation struct {
	ctx   context.Context
	path  string
	opts  Options
	timer *observ.Timer
	res   *Result
}

func run(ctx context.Context, path string, opts Options, generate bool) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+path)
	c := &compilation{
		ctx:   ctx,
		path:  path,
		opts:  opts,
		timer: observ.NewTimer(),
		res:   &Result{Path: path},
	}
	err := c.pipeline(generate)
	c.res.Timings = c.timer.Report()
	if err != nil {
		err = withPath(err, path)
		diag.ReportError(opts.Reporter, err, diag.IOLoadFailed, path)
		span.WithExtra("error", err.Error())
		span.End("failed")
		return nil, err
	}
	if c.res.Cached {
		span.End("cached")
	} else {
		span.End("")
	}
	return c.res, nil
}

func (c *compilation) pipeline(generate bool) error {
	var (
		src  *Source
		tree *ast.Tree
		key  project.Digest
	)
	err := c.phase(PhaseLoad, func() error {
		var err error
		if src, err = ReadSource(c.path); err != nil {
			return err
		}
		c.res.Format = src.Format
		if generate && c.opts.Cache != nil {
			key = CacheKey(src.Data, c.opts)
			if c.lookup(key) {
				return nil
			}
		}
		tree, err = src.Tree()
		return err
	})
	if err != nil || c.res.Cached {
		return err
	}
	c.res.Tree = tree

	err = c.phase(PhaseAnalyze, func() error {
		res, err := sema.Analyze(c.ctx, tree, sema.Options{Prelude: c.opts.Prelude})
		c.res.Sema = res
		return err
	})
	if err != nil || !generate {
		return err
	}

	err = c.phase(PhaseGenerate, func() error {
		var out strings.Builder
		if err := arm64.Generate(c.ctx, tree, c.res.Sema, c.opts.codegen(), &out); err != nil {
			return err
		}
		c.res.Assembly = out.String()
		return nil
	})
	if err != nil {
		return err
	}
	if !key.IsZero() {
		c.store(key)
	}
	return nil
}

// phase times fn, wraps it in a trace span and notifies the observer.
func (c *compilation) phase(name string, fn func() error) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	c.notify(PhaseEvent{Path: c.path, Name: name, Status: PhaseStart})
	_, span := trace.Start(c.ctx, trace.ScopePass, "driver."+name)
	start := time.Now()
	err := c.timer.Measure(name, fn)
	elapsed := time.Since(start)
	if err != nil {
		span.End("failed")
	} else {
		span.End("")
	}
	c.notify(PhaseEvent{Path: c.path, Name: name, Status: PhaseEnd, Elapsed: elapsed, Err: err})
	return err
}

func (c *compilation) notify(ev PhaseEvent) {
	if c.opts.Observer != nil {
		c.opts.Observer(ev)
	}
}

func (c *compilation) lookup(key project.Digest) bool {
	var entry CacheEntry
	hit, err := c.opts.Cache.Get(key, &entry)
	if err != nil {
		c.cacheWarning("read", err)
		return false
	}
	if !hit {
		trace.Point(c.ctx, trace.ScopePass, "cache.miss", c.path)
		return false
	}
	trace.Point(c.ctx, trace.ScopePass, "cache.hit", c.path)
	c.res.Assembly = entry.Assembly
	c.res.Cached = true
	return true
}

func (c *compilation) store(key project.Digest) {
	entry := CacheEntry{
		Schema:   cacheSchemaVersion,
		Path:     c.path,
		Assembly: c.res.Assembly,
		Timings:  c.timer.Report(),
	}
	if err := c.opts.Cache.Put(key, &entry); err != nil {
		c.cacheWarning("write", err)
	}
}

// cacheWarning reports a cache failure; the compilation itself goes on.
func (c *compilation) cacheWarning(op string, err error) {
	if c.opts.Reporter == nil {
		return
	}
	d := diag.New(diag.SevWarning, diag.IOCache, 0, "cache "+op+": "+err.Error())
	d.Path = c.path
	c.opts.Reporter.Report(d)
}
