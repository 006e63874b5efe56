package arm64

import (
	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// call lowers a function call.
//
// Stack layout around the branch for a function with stack parameters,
// from sp upwards: the spill area for live caller-saved registers, then
// the arguments past the eighth. The callee finds its stack parameters
// above the spill area using the size recorded on its symbol. Builtins do
// not know about the spill area, so for them the order is reversed.
func (g *Generator) call(n *ast.Node) (Reg, error) {
	callee := g.sym(n.Sym)
	if callee == nil || !callee.IsCallable() {
		return NoReg, diag.Internalf(n.Line, "call without a resolved callee")
	}
	argNodes := g.tree.Get(n.Children[1]).Children
	args := make([]Reg, 0, len(argNodes))
	release := func() {
		for _, r := range args {
			_ = g.regs.Free(r)
		}
	}
	for _, a := range argNodes {
		r, err := g.expr(g.tree.Child(a, 0))
		if err != nil {
			release()
			return NoReg, err
		}
		if !r.IsValid() {
			release()
			return NoReg, diag.Internalf(n.Line, "void value passed to %q", callee.Name)
		}
		args = append(args, r)
	}

	isArg := make(map[Reg]bool, len(args))
	for _, r := range args {
		isArg[r] = true
	}
	var live []Reg
	for _, r := range g.regs.SnapshotCallerSaved() {
		if !isArg[r] {
			live = append(live, r)
		}
	}

	stackArgs := g.target.StackArgBytes(len(args))
	spill := g.target.SpillBytes(len(live))
	builtin := callee.Kind == symbols.SymbolBuiltin
	if !builtin && len(args) > g.target.ArgRegs {
		spill = g.target.SpillBytes(g.regs.CallerSavedSize())
		if err := callee.RecordCallerSpill(spill); err != nil {
			return NoReg, diag.Internalf(n.Line, "%v", err)
		}
	}

	s := &g.fn.body
	var spillAt int32
	if builtin {
		g.pushSpill(live, spill)
		g.pushStackArgs(args, stackArgs)
		spillAt = stackArgs
	} else {
		g.pushStackArgs(args, stackArgs)
		g.pushSpill(live, spill)
	}
	for i, r := range args {
		if i >= g.target.ArgRegs {
			break
		}
		s.ins("mov x%d, %s", i, r.X())
	}
	if err := g.free(n.Line, args...); err != nil {
		return NoReg, err
	}

	s.ins("bl %s", callLabel(callee))

	for i, r := range live {
		s.ins("ldr %s, [sp, #%d]", r.X(), spillAt+int32(i)*g.target.RegSize)
	}
	if total := spill + stackArgs; total > 0 {
		s.spAdjust(total)
		if err := g.fn.frame.Pop(total); err != nil {
			return NoReg, diag.Internalf(n.Line, "%v", err)
		}
	}

	if callee.Type == types.Void || callee.Type == types.Invalid {
		return NoReg, nil
	}
	dst, err := g.alloc(n.Line)
	if err != nil {
		return NoReg, err
	}
	s.ins("mov %s, w0", dst.W())
	return dst, nil
}

// pushStackArgs reserves the outgoing area and stores arguments past the
// register count. Offsets of the current frame move with sp.
func (g *Generator) pushStackArgs(args []Reg, bytes int32) {
	if bytes == 0 {
		return
	}
	s := &g.fn.body
	s.spAdjust(-bytes)
	g.fn.frame.Push(bytes)
	for i := g.target.ArgRegs; i < len(args); i++ {
		s.ins("str %s, [sp, #%d]", args[i].X(), int32(i-g.target.ArgRegs)*g.target.StackArg)
	}
}

// pushSpill reserves bytes and saves the live caller-saved registers at
// the bottom of the new area.
func (g *Generator) pushSpill(live []Reg, bytes int32) {
	if bytes == 0 {
		return
	}
	s := &g.fn.body
	s.spAdjust(-bytes)
	g.fn.frame.Push(bytes)
	for i, r := range live {
		s.ins("str %s, [sp, #%d]", r.X(), int32(i)*g.target.RegSize)
	}
}
