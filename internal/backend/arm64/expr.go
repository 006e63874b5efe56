package arm64

import (
	"strconv"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/symbols"
)

var condCodes = map[ast.Kind]string{
	ast.KindEq: "eq",
	ast.KindNe: "ne",
	ast.KindLt: "lt",
	ast.KindGt: "gt",
	ast.KindLe: "le",
	ast.KindGe: "ge",
}

// expr lowers an expression and returns the register holding its value,
// or NoReg for a void call.
func (g *Generator) expr(id ast.NodeID) (Reg, error) {
	n := g.tree.Get(id)
	s := &g.fn.body
	switch {
	case n.Kind.IsAssign():
		return g.assign(n)
	case n.Kind.IsLogical():
		return g.shortCircuit(n)
	case n.Kind.IsBinary():
		return g.binary(n)
	}

	switch n.Kind {
	case ast.KindNumber:
		v, err := strconv.ParseInt(n.Attr, 10, 64)
		if err != nil {
			return NoReg, diag.Internalf(n.Line, "bad number %q", n.Attr)
		}
		r, err := g.alloc(n.Line)
		if err != nil {
			return NoReg, err
		}
		s.movImm(r, v)
		return r, nil

	case ast.KindTrue, ast.KindFalse:
		r, err := g.alloc(n.Line)
		if err != nil {
			return NoReg, err
		}
		if n.Kind == ast.KindTrue {
			s.ins("mov %s, #1", r.W())
		} else {
			s.ins("mov %s, #0", r.W())
		}
		return r, nil

	case ast.KindString:
		sym := g.sym(n.Sym)
		label, ok := "", false
		if sym != nil {
			label, ok = sym.Label()
		}
		if !ok {
			return NoReg, diag.Internalf(n.Line, "string literal without a constant")
		}
		r, err := g.alloc(n.Line)
		if err != nil {
			return NoReg, err
		}
		s.addr(r.X(), label)
		return r, nil

	case ast.KindID:
		return g.load(n)

	case ast.KindFuncCall:
		return g.call(n)

	case ast.KindNeg, ast.KindNot:
		r, err := g.expr(n.Children[0])
		if err != nil {
			return NoReg, err
		}
		if n.Kind == ast.KindNeg {
			s.ins("neg %s, %s", r.W(), r.W())
		} else {
			s.ins("eor %s, %s, #1", r.W(), r.W())
		}
		return r, nil
	}
	return NoReg, diag.Internalf(n.Line, "%s is not an expression", n.Kind)
}

// load reads a variable, or the address of a function, into a new register.
func (g *Generator) load(n *ast.Node) (Reg, error) {
	sym := g.sym(n.Sym)
	if sym == nil {
		return NoReg, diag.Internalf(n.Line, "unresolved identifier %q", n.Attr)
	}
	r, err := g.alloc(n.Line)
	if err != nil {
		return NoReg, err
	}
	s := &g.fn.body
	if sym.IsCallable() {
		s.addr(r.X(), callLabel(sym))
		return r, nil
	}
	if off, ok := sym.Offset(); ok {
		s.ins("ldr %s, [sp, #%d]", r.W(), off)
		return r, nil
	}
	if label, ok := sym.Label(); ok {
		s.ins("adrp x16, %s", label)
		s.ins("ldr %s, [x16, :lo12:%s]", r.W(), label)
		return r, nil
	}
	return NoReg, diag.Internalf(n.Line, "%s %q has no storage", sym.Kind, sym.Name)
}

func (g *Generator) store(sym *symbols.Symbol, r Reg, line uint32) error {
	s := &g.fn.body
	if off, ok := sym.Offset(); ok {
		s.ins("str %s, [sp, #%d]", r.W(), off)
		return nil
	}
	if label, ok := sym.Label(); ok {
		s.ins("adrp x16, %s", label)
		s.ins("str %s, [x16, :lo12:%s]", r.W(), label)
		return nil
	}
	return diag.Internalf(line, "%s %q has no storage", sym.Kind, sym.Name)
}

// assign stores the value and returns it, so assignments nest.
func (g *Generator) assign(n *ast.Node) (Reg, error) {
	target := g.tree.Get(n.Children[0])
	sym := g.sym(target.Sym)
	if sym == nil {
		return NoReg, diag.Internalf(n.Line, "unresolved assignment target %q", target.Attr)
	}
	if n.Kind == ast.KindAssign {
		value, err := g.expr(n.Children[1])
		if err != nil {
			return NoReg, err
		}
		return value, g.store(sym, value, n.Line)
	}
	// x op= e is x = x op e: the target is read before e runs
	cur, err := g.load(target)
	if err != nil {
		return NoReg, err
	}
	value, err := g.expr(n.Children[1])
	if err != nil {
		return NoReg, err
	}
	res, err := g.arith(n.Kind.ArithmeticOf(), cur, value, n.Line)
	if err != nil {
		return NoReg, err
	}
	return res, g.store(sym, res, n.Line)
}

func (g *Generator) binary(n *ast.Node) (Reg, error) {
	lhs, err := g.expr(n.Children[0])
	if err != nil {
		return NoReg, err
	}
	rhs, err := g.expr(n.Children[1])
	if err != nil {
		return NoReg, err
	}
	if cc, ok := condCodes[n.Kind]; ok {
		dst, err := g.alloc(n.Line)
		if err != nil {
			return NoReg, err
		}
		s := &g.fn.body
		s.ins("cmp %s, %s", lhs.W(), rhs.W())
		s.ins("cset %s, %s", dst.W(), cc)
		return dst, g.free(n.Line, lhs, rhs)
	}
	return g.arith(n.Kind, lhs, rhs, n.Line)
}

// arith computes lhs op rhs into a fresh register and frees both operands.
func (g *Generator) arith(op ast.Kind, lhs, rhs Reg, line uint32) (Reg, error) {
	s := &g.fn.body
	if op == ast.KindDiv || op == ast.KindMod {
		g.guardDivisor(s, rhs, line)
	}
	dst, err := g.alloc(line)
	if err != nil {
		return NoReg, err
	}
	switch op {
	case ast.KindAdd:
		s.ins("add %s, %s, %s", dst.W(), lhs.W(), rhs.W())
	case ast.KindSub:
		s.ins("sub %s, %s, %s", dst.W(), lhs.W(), rhs.W())
	case ast.KindMul:
		s.ins("mul %s, %s, %s", dst.W(), lhs.W(), rhs.W())
	case ast.KindDiv:
		s.ins("sdiv %s, %s, %s", dst.W(), lhs.W(), rhs.W())
	case ast.KindMod:
		s.ins("sdiv %s, %s, %s", dst.W(), lhs.W(), rhs.W())
		s.ins("msub %s, %s, %s, %s", dst.W(), dst.W(), rhs.W(), lhs.W())
	default:
		return NoReg, diag.Internalf(line, "no arithmetic lowering for %s", op)
	}
	return dst, g.free(line, lhs, rhs)
}

// shortCircuit lowers && and ||: the right operand only runs when the left
// one does not decide the result.
func (g *Generator) shortCircuit(n *ast.Node) (Reg, error) {
	s := &g.fn.body
	lhs, err := g.expr(n.Children[0])
	if err != nil {
		return NoReg, err
	}
	dst, err := g.alloc(n.Line)
	if err != nil {
		return NoReg, err
	}
	s.ins("mov %s, %s", dst.W(), lhs.W())
	if err := g.free(n.Line, lhs); err != nil {
		return NoReg, err
	}
	done := g.newLabel()
	if n.Kind == ast.KindAnd {
		s.ins("cbz %s, %s", dst.W(), done)
	} else {
		s.ins("cbnz %s, %s", dst.W(), done)
	}
	rhs, err := g.expr(n.Children[1])
	if err != nil {
		return NoReg, err
	}
	s.ins("mov %s, %s", dst.W(), rhs.W())
	if err := g.free(n.Line, rhs); err != nil {
		return NoReg, err
	}
	s.label(done)
	return dst, nil
}
