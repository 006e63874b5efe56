package sema

import (
	"strconv"

	"fortio.org/safecast"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// resolve opens and closes frames in step with the tree, declares
// parameters and locals, binds every identifier reference and types the
// literals.
func (a *analyzer) resolve() error {
	if err := Walk(a.tree, a.tree.Root, a.resolvePre, a.resolvePost); err != nil {
		return err
	}
	if a.scopes.CurrentKind() != symbols.FrameGlobal {
		return diag.Internalf(0, "scope stack unbalanced after resolution (%d frames)", a.scopes.Depth())
	}
	return nil
}

func (a *analyzer) resolvePre(id ast.NodeID, n *ast.Node) (Action, error) {
	switch n.Kind {
	case ast.KindFuncDecl, ast.KindMainFuncDecl:
		a.scopes.Open(symbols.FrameFunction)
		a.body = a.tree.FuncBody(id)

	case ast.KindBlock:
		// the function body shares the function frame with the parameters
		if id != a.body {
			a.scopes.Open(symbols.FrameBlock)
		}

	case ast.KindParameter:
		return Descend, a.declareParam(n)

	case ast.KindGlobVarDecl:
		if a.scopes.CurrentKind() != symbols.FrameGlobal {
			return Prune, diag.Errorf(diag.SemaIllegalDeclPlace, n.Line, "global variable declared inside a function")
		}
		return Prune, nil

	case ast.KindVarDecl:
		switch a.scopes.CurrentKind() {
		case symbols.FrameGlobal:
			// collected together with the other globals
			return Prune, nil
		case symbols.FrameFunction:
			return Prune, a.collectVars(n, symbols.SymbolLocal)
		default:
			return Prune, diag.Errorf(diag.SemaIllegalDeclPlace, n.Line,
				"variables may only be declared at the top level of a function or at global scope")
		}

	case ast.KindID:
		if n.Sym.IsValid() {
			return Descend, nil
		}
		symID, ok := a.scopes.Find(n.Attr)
		if !ok {
			return Descend, diag.Errorf(diag.SemaUnresolvedSymbol, n.Line, "symbol %q is not defined", n.Attr)
		}
		n.Sym = symID
		sym := a.sym(symID)
		if sym.IsCallable() {
			n.Type = sym.Signature
		} else {
			n.Type = sym.Type
		}

	case ast.KindNumber:
		v, err := strconv.ParseInt(n.Attr, 10, 64)
		if err == nil {
			_, err = safecast.Conv[int32](v)
		}
		if err != nil {
			return Descend, diag.Errorf(diag.SemaLiteralRange, n.Line, "integer literal %s does not fit in 32 bits", n.Attr)
		}
		n.Type = types.Int

	case ast.KindTrue, ast.KindFalse:
		n.Type = types.Bool

	case ast.KindString:
		n.Type = types.String
	}
	return Descend, nil
}

func (a *analyzer) resolvePost(id ast.NodeID, n *ast.Node) error {
	switch n.Kind {
	case ast.KindFuncDecl, ast.KindMainFuncDecl:
		a.body = ast.NoNodeID
		return a.closeScope(n.Line)
	case ast.KindBlock:
		if id != a.body {
			return a.closeScope(n.Line)
		}
	}
	return nil
}

func (a *analyzer) closeScope(line uint32) error {
	if err := a.scopes.Close(); err != nil {
		return diag.Errorf(diag.SemaNoScope, line, "%v", err)
	}
	return nil
}

func (a *analyzer) declareParam(n *ast.Node) error {
	t, err := valueType(n.Attr, n.Line)
	if err != nil {
		return err
	}
	nameNode := a.tree.Get(n.Children[0])
	symID, err := a.declare(symbols.Symbol{
		Name:      nameNode.Attr,
		Kind:      symbols.SymbolParam,
		Signature: t,
		Type:      t,
		Line:      nameNode.Line,
	})
	if err != nil {
		return err
	}
	nameNode.Sym = symID
	nameNode.Type = t
	n.Sym = symID
	n.Type = t
	return nil
}
