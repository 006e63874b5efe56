package driver

import (
	"fmt"

	"kestrel/internal/ast"
	"kestrel/internal/backend/arm64"
	"kestrel/internal/diag"
	"kestrel/internal/observ"
	"kestrel/internal/sema"
	"kestrel/internal/symbols"
)

// Options configure one compilation.
type Options struct {
	// MaxRegisters limits the expression register pool (0 = whole pool).
	MaxRegisters int
	// Annotate emits source-line comments into the assembly.
	Annotate bool
	// Prelude adds runtime operations to the built-in exit and printf.
	Prelude []symbols.PreludeEntry
	// Cache, when non-nil, short-circuits analysis and generation for
	// trees compiled before with the same options.
	Cache *DiskCache
	// Reporter receives the diagnostic of a failed compilation.
	Reporter diag.Reporter
	// Observer receives phase boundaries.
	Observer PhaseObserver
}

func (o Options) codegen() arm64.Options {
	return arm64.Options{MaxRegisters: o.MaxRegisters, Annotate: o.Annotate}
}

// fingerprint is the part of the options that influences the output.
func (o Options) fingerprint() string {
	s := fmt.Sprintf("regs=%d;annotate=%t", o.MaxRegisters, o.Annotate)
	for _, p := range o.Prelude {
		s += fmt.Sprintf(";%s:%s->%s@%s", p.Name, p.Signature, p.Result, p.Label)
	}
	return s
}

// Result is the outcome of a successful compilation.
type Result struct {
	Path   string
	Format ast.Format
	// Tree and Sema are nil when the assembly came from the cache.
	Tree     *ast.Tree
	Sema     *sema.Result
	Assembly string
	Timings  observ.Report
	Cached   bool
}
