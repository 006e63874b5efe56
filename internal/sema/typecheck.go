package sema

import (
	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/types"
)

// typecheck runs post-order so every child is typed before its parent.
func (a *analyzer) typecheck() error {
	return Walk(a.tree, a.tree.Root, nil, a.typecheckNode)
}

func (a *analyzer) typecheckNode(id ast.NodeID, n *ast.Node) error {
	switch {
	case n.Kind.IsAssign():
		return a.checkAssign(n)
	case n.Kind.IsBinary():
		return a.checkBinary(n)
	case n.Kind.IsUnary():
		return a.checkUnary(n)
	}

	switch n.Kind {
	case ast.KindFuncCall:
		return a.checkCall(id, n)
	case ast.KindArgument:
		n.Type = a.typeOf(n.Children[0])
	case ast.KindReturn:
		if len(n.Children) == 1 {
			n.Type = a.typeOf(n.Children[0])
		} else {
			n.Type = types.Void
		}
	default:
		if !n.Type.IsValid() {
			n.Type = types.Void
		}
	}
	return nil
}

func (a *analyzer) typeOf(id ast.NodeID) types.Type {
	if n := a.tree.Get(id); n != nil {
		return n.Type
	}
	return types.Invalid
}

func (a *analyzer) checkAssign(n *ast.Node) error {
	target := a.tree.Get(n.Children[0])
	sym := a.sym(target.Sym)
	if sym == nil || !sym.IsVariable() {
		kind := "value"
		if sym != nil {
			kind = sym.Kind.String()
		}
		return diag.Errorf(diag.SemaAssignTarget, n.Line, "cannot assign to %s %q", kind, target.Attr)
	}
	lhs, rhs := target.Type, a.typeOf(n.Children[1])
	if lhs != rhs {
		return diag.Errorf(diag.SemaOperandMismatch, n.Line, "cannot assign %s to %q of type %s", rhs, target.Attr, lhs)
	}
	if n.Kind != ast.KindAssign && lhs != types.Int {
		return diag.Errorf(diag.SemaInvalidOperand, n.Line, "operator %s requires int operands, got %s", n.Kind, lhs)
	}
	n.Type = lhs
	return nil
}

func (a *analyzer) checkBinary(n *ast.Node) error {
	lhs, rhs := a.typeOf(n.Children[0]), a.typeOf(n.Children[1])
	if lhs != rhs {
		return diag.Errorf(diag.SemaOperandMismatch, n.Line, "operands of %s have different types: %s and %s", n.Kind, lhs, rhs)
	}
	var operand, result types.Type
	switch {
	case n.Kind.IsLogical():
		operand, result = types.Bool, types.Bool
	case n.Kind.IsRelational():
		operand, result = types.Int, types.Bool
	case n.Kind.IsEquality():
		if !lhs.IsValue() {
			return diag.Errorf(diag.SemaInvalidOperand, n.Line, "operator %s compares int or bool values, got %s", n.Kind, lhs)
		}
		operand, result = lhs, types.Bool
	default:
		operand, result = types.Int, types.Int
	}
	if lhs != operand {
		return diag.Errorf(diag.SemaInvalidOperand, n.Line, "operator %s requires %s operands, got %s", n.Kind, operand, lhs)
	}
	n.Type = result
	return nil
}

func (a *analyzer) checkUnary(n *ast.Node) error {
	want := types.Int
	if n.Kind == ast.KindNot {
		want = types.Bool
	}
	if got := a.typeOf(n.Children[0]); got != want {
		return diag.Errorf(diag.SemaInvalidOperand, n.Line, "operator %s requires a %s operand, got %s", n.Kind, want, got)
	}
	n.Type = want
	return nil
}

func (a *analyzer) checkCall(id ast.NodeID, n *ast.Node) error {
	callee := a.tree.Get(n.Children[0])
	sym := a.sym(callee.Sym)
	if sym == nil || !sym.IsCallable() {
		return diag.Errorf(diag.SemaNotCallable, n.Line, "%q is not a function", callee.Attr)
	}

	args := a.tree.CallArgs(id)
	argTypes := make([]types.Type, len(args))
	for i, arg := range args {
		argTypes[i] = a.typeOf(arg)
	}

	if sym.Signature.IsVariadicString() {
		if len(argTypes) == 0 || argTypes[0] != types.String {
			got := types.Invalid
			if len(argTypes) > 0 {
				got = argTypes[0]
			}
			return diag.Errorf(diag.SemaCallSignature, n.Line, "first argument of %q must be a string, got %s", callee.Attr, got)
		}
	} else if site := types.Signature(argTypes...); site != sym.Signature {
		return diag.Errorf(diag.SemaCallSignature, n.Line, "call to %q has signature %s, expected %s", callee.Attr, site, sym.Signature)
	}
	n.Sym = callee.Sym
	n.Type = sym.Type
	return nil
}
