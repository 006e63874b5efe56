package sema

import (
	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// collectGlobals registers every function and global variable in the
// global frame so that bodies may reference declarations that appear later
// in the file.
func (a *analyzer) collectGlobals() error {
	a.scopes.Open(symbols.FrameGlobal)

	var mains []uint32
	pre := func(_ ast.NodeID, n *ast.Node) (Action, error) {
		switch n.Kind {
		case ast.KindParameters, ast.KindBlock:
			// only declarations matter here
			return Prune, nil
		}
		return Descend, nil
	}
	post := func(id ast.NodeID, n *ast.Node) error {
		switch n.Kind {
		case ast.KindFuncDecl, ast.KindMainFuncDecl:
			if n.Kind == ast.KindMainFuncDecl {
				mains = append(mains, n.Line)
			}
			return a.collectFunction(id, n)
		case ast.KindGlobVarDecl, ast.KindVarDecl:
			return a.collectVars(n, symbols.SymbolGlobal)
		}
		return nil
	}
	if err := Walk(a.tree, a.tree.Root, pre, post); err != nil {
		return err
	}

	switch len(mains) {
	case 1:
		return nil
	case 0:
		return diag.Errorf(diag.SemaEntryCount, a.tree.Get(a.tree.Root).Line, "program has no main function")
	default:
		return diag.Errorf(diag.SemaEntryCount, mains[1], "program declares %d main functions, exactly one is required", len(mains)).
			WithNote(mains[0], "first main function declared here")
	}
}

func (a *analyzer) collectFunction(id ast.NodeID, n *ast.Node) error {
	result, err := types.ParseDeclared(n.Attr)
	if err != nil {
		return diag.Errorf(diag.SemaUnknownType, n.Line, "invalid return type %q (expected int, bool or void)", n.Attr)
	}
	params := a.tree.FuncParams(id)
	paramTypes := make([]types.Type, 0, len(params))
	for _, p := range params {
		pn := a.tree.Get(p)
		t, err := valueType(pn.Attr, pn.Line)
		if err != nil {
			return err
		}
		paramTypes = append(paramTypes, t)
	}

	sig := types.Signature(paramTypes...)
	symID, err := a.declare(symbols.Symbol{
		Name:      a.tree.FuncName(id),
		Kind:      symbols.SymbolFunction,
		Signature: sig,
		Type:      result,
		Line:      n.Line,
	})
	if err != nil {
		return err
	}
	n.Sym = symID
	nameNode := a.tree.Get(a.tree.Child(id, 0))
	nameNode.Sym = symID
	nameNode.Type = sig

	a.result.Functions = append(a.result.Functions, id)
	if n.Kind == ast.KindMainFuncDecl {
		a.result.Entry = symID
	}
	return nil
}

// collectVars declares every name of a variable declaration with the given
// kind and attaches the symbols to the name nodes.
func (a *analyzer) collectVars(n *ast.Node, kind symbols.SymbolKind) error {
	t, err := valueType(n.Attr, n.Line)
	if err != nil {
		return err
	}
	for _, child := range n.Children {
		nameNode := a.tree.Get(child)
		symID, err := a.declare(symbols.Symbol{
			Name:      nameNode.Attr,
			Kind:      kind,
			Signature: t,
			Type:      t,
			Line:      nameNode.Line,
		})
		if err != nil {
			return err
		}
		nameNode.Sym = symID
		nameNode.Type = t
		if kind == symbols.SymbolGlobal {
			a.result.Globals = append(a.result.Globals, symID)
		}
	}
	if len(n.Children) > 0 {
		n.Sym = a.tree.Get(n.Children[0]).Sym
	}
	n.Type = types.Void
	return nil
}
