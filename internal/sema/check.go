package sema

import (
	"context"
	"fmt"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/symbols"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

// Options configure one analysis run.
type Options struct {
	// Prelude adds runtime operations on top of exit and printf.
	Prelude []symbols.PreludeEntry
	// Reporter, when set, also receives the failure that aborted analysis.
	Reporter diag.Reporter
}

// Result stores the artefacts later stages need.
type Result struct {
	Symbols *symbols.Symbols
	Scopes  *symbols.Stack
	// Entry is the symbol of the single mainFuncDecl.
	Entry symbols.SymbolID
	// Functions lists every function declaration in source order.
	Functions []ast.NodeID
	// Globals lists global variable symbols in declaration order.
	Globals []symbols.SymbolID
}

// Name returns the symbol name for id, suitable for ast.Dump.
func (r *Result) Name(id symbols.SymbolID) string {
	if sym := r.Symbols.Get(id); sym != nil {
		return sym.Name
	}
	return "?"
}

// Symbol resolves id against the result's arena.
func (r *Result) Symbol(id symbols.SymbolID) *symbols.Symbol {
	if r == nil {
		return nil
	}
	return r.Symbols.Get(id)
}

type pass struct {
	name string
	run  func(*analyzer) error
}

var passes = [...]pass{
	{"collect", (*analyzer).collectGlobals},
	{"resolve", (*analyzer).resolve},
	{"typecheck", (*analyzer).typecheck},
	{"controlflow", (*analyzer).controlFlow},
	{"returns", (*analyzer).returns},
}

// Analyze runs the five passes over tree. Annotations from a previous run
// are cleared first, so analysing the same tree twice gives the same
// result. The first failure aborts and is returned as a *diag.Error.
func Analyze(ctx context.Context, tree *ast.Tree, opts Options) (*Result, error) {
	if tree == nil || !tree.Root.IsValid() {
		return nil, diag.Errorf(diag.SemaMalformedTree, 0, "empty syntax tree")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tree.ResetAnnotations()

	arena := symbols.NewSymbols(uint32(min(tree.Len(), 1<<16)))
	stack, err := symbols.NewStack(arena, opts.Prelude)
	if err != nil {
		return nil, diag.Internalf(0, "prelude: %v", err)
	}
	a := &analyzer{
		tree:   tree,
		syms:   arena,
		scopes: stack,
		result: &Result{Symbols: arena, Scopes: stack},
	}

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		span := trace.Begin(tracer, trace.ScopePass, "sema."+p.name, parent)
		err := p.run(a)
		if err != nil {
			span.WithExtra("error", err.Error())
			span.End("failed")
			if opts.Reporter != nil {
				diag.ReportError(opts.Reporter, err, diag.SemaInfo, "")
			}
			return nil, err
		}
		span.End("")
	}
	return a.result, nil
}

type analyzer struct {
	tree   *ast.Tree
	syms   *symbols.Symbols
	scopes *symbols.Stack
	result *Result

	// body of the function being visited; its block shares the function frame
	body ast.NodeID
	// enclosing function state for the return pass
	fnName    string
	fnResult  types.Type
	fnReturns bool
	loops     int
}

func (a *analyzer) sym(id symbols.SymbolID) *symbols.Symbol { return a.syms.Get(id) }

// declare creates a symbol in the current frame, rejecting a second
// declaration of the same name in that frame.
func (a *analyzer) declare(sym symbols.Symbol) (symbols.SymbolID, error) {
	if prev, ok := a.scopes.DefinedInCurrent(sym.Name); ok {
		err := diag.Errorf(diag.SemaRedefinition, sym.Line, "%q is already defined in this scope", sym.Name)
		if p := a.sym(prev); p != nil && p.Line != 0 {
			err = err.WithNote(p.Line, fmt.Sprintf("previous definition of %q", sym.Name))
		}
		return symbols.NoSymbolID, err
	}
	id := a.syms.New(sym)
	if err := a.scopes.Insert(sym.Name, id); err != nil {
		return symbols.NoSymbolID, diag.Errorf(diag.SemaNoScope, sym.Line, "%v", err)
	}
	return id, nil
}

// valueType parses a declared variable or parameter type.
func valueType(name string, line uint32) (types.Type, error) {
	t, err := types.ParseDeclared(name)
	if err != nil || !t.IsValue() {
		return types.Invalid, diag.Errorf(diag.SemaUnknownType, line, "invalid variable type %q (expected int or bool)", name)
	}
	return t, nil
}
