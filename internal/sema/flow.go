package sema

import (
	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/types"
)

// controlFlow rejects break outside while and non-bool conditions.
func (a *analyzer) controlFlow() error {
	a.loops = 0
	pre := func(_ ast.NodeID, n *ast.Node) (Action, error) {
		switch n.Kind {
		case ast.KindWhile:
			a.loops++
		case ast.KindBreak:
			if a.loops == 0 {
				return Prune, diag.Errorf(diag.SemaBreakOutsideLoop, n.Line, "break statement must be within a while loop")
			}
		}
		return Descend, nil
	}
	post := func(_ ast.NodeID, n *ast.Node) error {
		if !n.Kind.IsConditional() {
			return nil
		}
		if n.Kind == ast.KindWhile {
			a.loops--
		}
		if cond := a.typeOf(n.Children[0]); cond != types.Bool {
			return diag.Errorf(diag.SemaConditionType, n.Line, "%s condition must be bool, got %s", n.Kind, cond)
		}
		return nil
	}
	return Walk(a.tree, a.tree.Root, pre, post)
}

// returns checks return statements against the declared result of the
// enclosing function. A typed function passes as long as at least one
// return with a value exists anywhere in its body; paths that fall off the
// end are caught at run time by the generated trap.
func (a *analyzer) returns() error {
	pre := func(id ast.NodeID, n *ast.Node) (Action, error) {
		switch n.Kind {
		case ast.KindFuncDecl, ast.KindMainFuncDecl:
			a.fnName = a.tree.FuncName(id)
			a.fnResult = a.sym(n.Sym).Type
			a.fnReturns = false
		case ast.KindReturn:
			return Descend, a.checkReturn(n)
		}
		return Descend, nil
	}
	post := func(_ ast.NodeID, n *ast.Node) error {
		if !n.Kind.IsFuncDecl() {
			return nil
		}
		if a.fnResult != types.Void && !a.fnReturns {
			return diag.Errorf(diag.SemaMissingReturn, n.Line, "function %q must return a %s value", a.fnName, a.fnResult)
		}
		return nil
	}
	return Walk(a.tree, a.tree.Root, pre, post)
}

func (a *analyzer) checkReturn(n *ast.Node) error {
	if len(n.Children) == 0 {
		if a.fnResult != types.Void {
			return diag.Errorf(diag.SemaMissingReturnExpr, n.Line, "return in function %q must carry a %s value", a.fnName, a.fnResult)
		}
		return nil
	}
	if a.fnResult == types.Void {
		return diag.Errorf(diag.SemaVoidReturnsValue, n.Line, "void function %q cannot return a value", a.fnName)
	}
	if n.Type != a.fnResult {
		return diag.Errorf(diag.SemaReturnType, n.Line, "function %q returns %s, got %s", a.fnName, a.fnResult, n.Type)
	}
	a.fnReturns = true
	return nil
}
