package arm64

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/layout"
	"kestrel/internal/sema"
	"kestrel/internal/symbols"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

// Options tune code generation.
type Options struct {
	// Target overrides the frame discipline; the zero value means AArch64LinuxGNU.
	Target layout.Target
	// MaxRegisters limits the expression register pool (0 = whole pool).
	MaxRegisters int
	// Annotate emits a source-line comment before every statement.
	Annotate bool
}

// Generator holds the state of one generation run: register file, label
// counters and the output sections. It is not safe for concurrent use;
// independent runs use independent generators.
type Generator struct {
	tree   *ast.Tree
	res    *sema.Result
	syms   *symbols.Symbols
	target layout.Target
	opts   Options

	regs   *RegisterFile
	labels int
	nconst int

	text        sink
	consts      []constant
	constByText map[string]string

	fn *funcState
}

// Generate lowers an analysed tree to AArch64 assembly and writes it to w.
// Nothing is written when generation fails.
func Generate(ctx context.Context, tree *ast.Tree, res *sema.Result, opts Options, w io.Writer) error {
	g, err := NewGenerator(tree, res, opts)
	if err != nil {
		return err
	}
	out, err := g.Run(ctx)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return diag.Errorf(diag.IOWrite, 0, "write assembly: %v", err)
	}
	return nil
}

// NewGenerator prepares a generator for one analysed tree.
func NewGenerator(tree *ast.Tree, res *sema.Result, opts Options) (*Generator, error) {
	if tree == nil || res == nil || res.Symbols == nil {
		return nil, diag.Internalf(0, "code generation needs an analysed tree")
	}
	target := opts.Target
	if target.Triple == "" {
		target = layout.AArch64LinuxGNU()
	}
	regs := NewRegisterFile()
	if opts.MaxRegisters > 0 && opts.MaxRegisters < regs.Size() {
		if err := regs.Reserve(regs.Size() - opts.MaxRegisters); err != nil {
			return nil, diag.Internalf(0, "%v", err)
		}
	}
	return &Generator{
		tree:        tree,
		res:         res,
		syms:        res.Symbols,
		target:      target,
		opts:        opts,
		regs:        regs,
		constByText: make(map[string]string),
	}, nil
}

// Registers exposes the register file, mainly for invariant checks.
func (g *Generator) Registers() *RegisterFile { return g.regs }

// Run generates the whole module and returns the assembly text.
func (g *Generator) Run(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	g.syms.Each(func(_ symbols.SymbolID, sym *symbols.Symbol) { sym.ResetStorage() })

	span := trace.Begin(tracer, trace.ScopePass, "codegen.strings", parent)
	err := g.prepareStrings()
	span.End("")
	if err != nil {
		return "", err
	}
	if err := g.assignGlobals(); err != nil {
		return "", err
	}

	span = trace.Begin(tracer, trace.ScopePass, "codegen.functions", parent)
	err = sema.Walk(g.tree, g.tree.Root, func(id ast.NodeID, n *ast.Node) (sema.Action, error) {
		if n.Kind.IsFuncDecl() {
			if err := ctx.Err(); err != nil {
				return sema.Prune, err
			}
		}
		return g.pre(id, n)
	}, g.post)
	span.End("")
	if err != nil {
		return "", err
	}
	if left := g.regs.Allocated(); len(left) != 0 {
		return "", diag.Internalf(0, "registers still allocated after generation: %v", left)
	}
	return g.assemble()
}

func (g *Generator) sym(id symbols.SymbolID) *symbols.Symbol { return g.syms.Get(id) }

func (g *Generator) newLabel() string {
	l := fmt.Sprintf(".L%d", g.labels)
	g.labels++
	return l
}

func (g *Generator) newConstLabel() string {
	l := fmt.Sprintf(".LC%d", g.nconst)
	g.nconst++
	return l
}

// alloc wraps Allocate with a user-facing diagnostic.
func (g *Generator) alloc(line uint32) (Reg, error) {
	r, err := g.regs.Allocate()
	if errors.Is(err, ErrPoolExhausted) {
		return NoReg, diag.Errorf(diag.GenExpressionTooComplex, line,
			"expression too complex: all %d registers are in use", len(g.regs.Allocated()))
	}
	return r, err
}

func (g *Generator) free(line uint32, regs ...Reg) error {
	for _, r := range regs {
		if !r.IsValid() {
			continue
		}
		if err := g.regs.Free(r); err != nil {
			return diag.Internalf(line, "%v", err)
		}
	}
	return nil
}

func globalLabel(name string) string { return "gv_" + name }

func entryLabel(name string) string { return name + "1" }

func exitLabel(name string) string { return name + "2" }

// callLabel is the branch target for a callable symbol.
func callLabel(sym *symbols.Symbol) string {
	if sym.Kind == symbols.SymbolBuiltin {
		label, _ := sym.Label()
		return label
	}
	return entryLabel(sym.Name)
}

func (g *Generator) assignGlobals() error {
	for _, id := range g.res.Globals {
		sym := g.sym(id)
		if err := sym.SetLabel(globalLabel(sym.Name)); err != nil {
			return diag.Internalf(sym.Line, "%v", err)
		}
	}
	return nil
}

// assemble stitches the sections together.
func (g *Generator) assemble() (string, error) {
	entry := g.sym(g.res.Entry)
	if entry == nil {
		return "", diag.Internalf(0, "no entry function")
	}
	var out sink
	out.ins(".arch armv8-a")
	out.ins(".text")
	out.ins(".p2align 2")
	out.ins(".global main")
	out.ins(".type main, %%function")
	out.label("main")
	out.ins("stp x29, x30, [sp, #-16]!")
	out.ins("mov x29, sp")
	out.ins("bl %s", entryLabel(entry.Name))
	if entry.Type == types.Void {
		out.ins("mov w19, #0")
	} else {
		out.ins("mov w19, w0")
	}
	out.ins("mov x0, #0")
	out.ins("bl fflush")
	out.ins("mov w0, w19")
	out.ins("mov x8, #93")
	out.ins("svc #0")
	out.blank()
	out.append(&g.text)

	if len(g.res.Globals) > 0 {
		out.ins(".data")
		out.ins(".p2align 2")
		for _, id := range g.res.Globals {
			label, _ := g.sym(id).Label()
			out.label(label)
			out.ins(".zero 4")
		}
		out.blank()
	}
	if len(g.consts) > 0 {
		out.ins(".section .rodata")
		for _, c := range g.consts {
			out.label(c.label)
			out.ins(".asciz %s", asmQuote(c.text))
		}
	}
	return out.String(), nil
}
