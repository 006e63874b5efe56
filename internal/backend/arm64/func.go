package arm64

import (
	"strings"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/layout"
	"kestrel/internal/sema"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// funcState is the per-function part of the generator.
type funcState struct {
	node      ast.NodeID
	sym       symbols.SymbolID
	name      string
	result    types.Type
	line      uint32
	params    []symbols.SymbolID
	frame     *layout.Frame
	body      sink
	loopExits []string
}

// pre is the statement-level pre-order hook. Statements are generated
// entirely here and pruned; declarations need no code.
func (g *Generator) pre(id ast.NodeID, n *ast.Node) (sema.Action, error) {
	switch n.Kind {
	case ast.KindProgram, ast.KindBlock, ast.KindID:
		return sema.Descend, nil
	case ast.KindFuncDecl, ast.KindMainFuncDecl:
		return sema.Descend, g.beginFunction(id, n)
	case ast.KindParameters, ast.KindGlobVarDecl, ast.KindVarDecl:
		return sema.Prune, nil
	}
	if g.fn == nil {
		return sema.Prune, diag.Internalf(n.Line, "%s outside of a function", n.Kind)
	}
	return sema.Prune, g.statement(id, n)
}

func (g *Generator) post(_ ast.NodeID, n *ast.Node) error {
	if n.Kind.IsFuncDecl() {
		return g.endFunction()
	}
	return nil
}

// beginFunction lays out the frame: parameters first, then the locals
// declared at the top of the body, one slot each in declaration order.
func (g *Generator) beginFunction(id ast.NodeID, n *ast.Node) error {
	sym := g.sym(n.Sym)
	if sym == nil {
		return diag.Internalf(n.Line, "function without symbol")
	}
	fn := &funcState{
		node:   id,
		sym:    n.Sym,
		name:   sym.Name,
		result: sym.Type,
		line:   n.Line,
		frame:  layout.NewFrame(g.target, g.syms, sym.Name),
	}
	for _, p := range g.tree.FuncParams(id) {
		pid := g.tree.Get(p).Sym
		if _, err := fn.frame.Add(pid); err != nil {
			return diag.Internalf(n.Line, "%v", err)
		}
		fn.params = append(fn.params, pid)
	}
	for _, stmt := range g.tree.Get(g.tree.FuncBody(id)).Children {
		decl := g.tree.Get(stmt)
		if decl.Kind != ast.KindVarDecl {
			continue
		}
		for _, name := range decl.Children {
			if _, err := fn.frame.Add(g.tree.Get(name).Sym); err != nil {
				return diag.Internalf(decl.Line, "%v", err)
			}
		}
	}
	// функции генерируются по очереди, между ними все регистры свободны,
	// поэтому сохранять нужно ровно то, что тронуло тело
	if live := g.regs.Allocated(); len(live) != 0 {
		return diag.Internalf(n.Line, "registers %s still allocated at the start of %q", regNames(live), sym.Name)
	}
	g.regs.ResetTouched()
	g.fn = fn
	return nil
}

// endFunction emits prologue, body and epilogue. The prologue is written
// last because it saves the callee-saved registers the body used.
func (g *Generator) endFunction() error {
	fn := g.fn
	g.fn = nil
	if fn.frame.Depth() != 0 {
		return diag.Internalf(fn.line, "function %q ends with %d bytes still pushed", fn.name, fn.frame.Depth())
	}

	saved := g.regs.TouchedCalleeSaved()
	slots := int32(fn.frame.Len()) * g.target.SlotSize
	saveBase := layout.AlignUp(slots, g.target.RegSize)
	size, err := fn.frame.Size(saveBase - slots + int32(len(saved))*g.target.RegSize)
	if err != nil {
		return diag.Errorf(diag.GenFrameTooLarge, fn.line, "%v", err)
	}

	sym := g.sym(fn.sym)
	sym.CalleeSaved = sym.CalleeSaved[:0]
	for _, r := range saved {
		sym.CalleeSaved = append(sym.CalleeSaved, r.X())
	}

	s := &g.text
	s.ins(".p2align 2")
	s.ins(".type %s, %%function", entryLabel(fn.name))
	s.label(entryLabel(fn.name))
	s.spAdjust(-size)
	s.ins("str x29, [sp, #%d]", size-16)
	s.ins("str x30, [sp, #%d]", size-8)
	s.ins("add x29, sp, #%d", size-16)
	for i, r := range saved {
		s.ins("str %s, [sp, #%d]", r.X(), saveBase+int32(i)*g.target.RegSize)
	}
	if err := g.storeParams(s, fn, sym, size); err != nil {
		return err
	}

	s.append(&fn.body)

	if fn.result != types.Void {
		g.fallthroughTrap(s, fn.name, fn.line)
	}
	s.label(exitLabel(fn.name))
	for i, r := range saved {
		s.ins("ldr %s, [sp, #%d]", r.X(), saveBase+int32(i)*g.target.RegSize)
	}
	s.ins("ldr x29, [sp, #%d]", size-16)
	s.ins("ldr x30, [sp, #%d]", size-8)
	s.spAdjust(size)
	s.ins("ret")
	s.blank()
	return nil
}

// storeParams copies incoming arguments into their slots. Arguments past
// the register count sit above the caller's spill area.
func (g *Generator) storeParams(s *sink, fn *funcState, sym *symbols.Symbol, size int32) error {
	spill := g.calleeSpillBytes(sym, len(fn.params))
	for i, pid := range fn.params {
		off, _ := g.sym(pid).Offset()
		if i < g.target.ArgRegs {
			s.ins("str w%d, [sp, #%d]", i, off)
			continue
		}
		tmp, err := g.alloc(fn.line)
		if err != nil {
			return err
		}
		src := size + spill + int32(i-g.target.ArgRegs)*g.target.StackArg
		s.ins("ldr %s, [sp, #%d]", tmp.W(), src)
		s.ins("str %s, [sp, #%d]", tmp.W(), off)
		if err := g.free(fn.line, tmp); err != nil {
			return err
		}
	}
	return nil
}

// calleeSpillBytes is the spill area callers place between the stack
// arguments and the callee's entry sp. Functions with stack parameters
// always get the full caller-saved partition so every call site agrees.
func (g *Generator) calleeSpillBytes(sym *symbols.Symbol, params int) int32 {
	if params <= g.target.ArgRegs {
		return 0
	}
	if sym.SpillRecorded() {
		return sym.CallerSpill
	}
	return g.target.SpillBytes(g.regs.CallerSavedSize())
}

func regNames(regs []Reg) string {
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.X()
	}
	return strings.Join(names, ", ")
}
