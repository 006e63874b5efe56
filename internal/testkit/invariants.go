// Package testkit holds structural checks shared by the analyzer, code
// generator and driver tests.
package testkit

import (
	"fmt"

	"kestrel/internal/ast"
	"kestrel/internal/symbols"
)

// CheckTreeInvariants verifies an analysed tree:
// 1) every expression node carries a resolved type
// 2) every identifier and call is bound to a symbol of the arena
// 3) every function declaration is bound to a callable symbol
func CheckTreeInvariants(tree *ast.Tree, syms *symbols.Symbols) error {
	if tree == nil || syms == nil {
		return fmt.Errorf("nil tree or symbol arena")
	}
	nodes := tree.Nodes.Slice()
	for i := range nodes {
		n := &nodes[i]
		id := ast.NodeID(i + 1)
		if n.Kind.IsExpr() && !n.Type.IsValid() {
			return fmt.Errorf("node %d (%s %q, line %d) has no type", id, n.Kind, n.Attr, n.Line)
		}
		switch n.Kind {
		case ast.KindID, ast.KindFuncCall:
			if syms.Get(n.Sym) == nil {
				return fmt.Errorf("node %d (%s %q, line %d) is not bound to a symbol", id, n.Kind, n.Attr, n.Line)
			}
		case ast.KindFuncDecl, ast.KindMainFuncDecl:
			sym := syms.Get(n.Sym)
			if sym == nil || !sym.IsCallable() {
				return fmt.Errorf("function node %d (line %d) is not bound to a callable symbol", id, n.Line)
			}
		}
	}
	return nil
}

// CheckStorageInvariants verifies that every variable symbol has exactly one
// storage location: a distinct non-negative frame offset per function for
// locals and params, a label for globals.
func CheckStorageInvariants(syms *symbols.Symbols, frameOf func(symbols.SymbolID) string) error {
	if syms == nil {
		return fmt.Errorf("nil symbol arena")
	}
	type slot struct {
		frame  string
		offset int32
	}
	seen := make(map[slot]symbols.SymbolID)
	var firstErr error
	syms.Each(func(id symbols.SymbolID, sym *symbols.Symbol) {
		if firstErr != nil || !sym.IsVariable() {
			return
		}
		label, hasLabel := sym.Label()
		offset, hasOffset := sym.Offset()
		switch {
		case hasLabel && hasOffset:
			firstErr = fmt.Errorf("symbol %q has both a label and an offset", sym.Name)
		case sym.Kind == symbols.SymbolGlobal:
			if !hasLabel || label == "" {
				firstErr = fmt.Errorf("global %q has no data label", sym.Name)
			}
		case !hasOffset:
			firstErr = fmt.Errorf("%s %q has no frame offset", sym.Kind, sym.Name)
		case offset < 0:
			firstErr = fmt.Errorf("%s %q has negative offset %d", sym.Kind, sym.Name, offset)
		default:
			key := slot{frame: frameOf(id), offset: offset}
			if prev, ok := seen[key]; ok {
				firstErr = fmt.Errorf("%q and %q share offset %d in %s", syms.Get(prev).Name, sym.Name, offset, key.frame)
				return
			}
			seen[key] = id
		}
	})
	return firstErr
}

// FrameOwners maps each parameter and local symbol to the name of the
// function declaring it, for CheckStorageInvariants.
func FrameOwners(tree *ast.Tree) func(symbols.SymbolID) string {
	owners := make(map[symbols.SymbolID]string)
	var visit func(id ast.NodeID, fn string)
	visit = func(id ast.NodeID, fn string) {
		n := tree.Get(id)
		if n == nil {
			return
		}
		switch n.Kind {
		case ast.KindFuncDecl, ast.KindMainFuncDecl:
			fn = tree.FuncName(id)
		case ast.KindParameter, ast.KindVarDecl:
			if fn != "" {
				for _, c := range n.Children {
					if child := tree.Get(c); child != nil && child.Sym.IsValid() {
						owners[child.Sym] = fn
					}
				}
			}
		}
		for _, c := range n.Children {
			visit(c, fn)
		}
	}
	visit(tree.Root, "")
	return func(id symbols.SymbolID) string { return owners[id] }
}
