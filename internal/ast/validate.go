package ast

import (
	"fmt"

	"kestrel/internal/diag"
)

// Validate checks the shape contract between the parser and the analyzer:
// child counts and child kinds for every structural node. It does not look
// at names or types.
func (t *Tree) Validate() error {
	if t == nil || !t.Root.IsValid() {
		return diag.Errorf(diag.SemaMalformedTree, 0, "empty syntax tree")
	}
	root := t.Get(t.Root)
	if root == nil || root.Kind != KindProgram {
		return diag.Errorf(diag.SemaMalformedTree, 0, "tree root must be a program node")
	}
	return t.validate(t.Root, 0)
}

func (t *Tree) validate(id NodeID, depth int) error {
	n := t.Get(id)
	if n == nil {
		return diag.Errorf(diag.SemaMalformedTree, 0, "dangling node reference %d", id)
	}
	if depth > maxDepth {
		return diag.Errorf(diag.SemaMalformedTree, n.Line, "tree nesting deeper than %d", maxDepth)
	}
	if err := t.checkShape(id, n); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := t.validate(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

const maxDepth = 10_000

func (t *Tree) checkShape(id NodeID, n *Node) error {
	bad := func(format string, args ...any) error {
		return diag.Errorf(diag.SemaMalformedTree, n.Line, "%s node: %s", n.Kind, fmt.Sprintf(format, args...))
	}
	want := func(count int) error {
		if len(n.Children) != count {
			return bad("expected %d children, got %d", count, len(n.Children))
		}
		return nil
	}
	childIs := func(i int, kinds ...Kind) error {
		got := t.Kind(t.Child(id, i))
		for _, k := range kinds {
			if got == k {
				return nil
			}
		}
		return bad("child %d must be %v, got %s", i, kinds, got)
	}
	childIsExpr := func(i int) error {
		if k := t.Kind(t.Child(id, i)); !k.IsExpr() {
			return bad("child %d must be an expression, got %s", i, k)
		}
		return nil
	}

	switch n.Kind {
	case KindProgram:
		for i := range n.Children {
			if err := childIs(i, KindGlobVarDecl, KindVarDecl, KindFuncDecl, KindMainFuncDecl); err != nil {
				return err
			}
		}
	case KindGlobVarDecl, KindVarDecl:
		if len(n.Children) == 0 {
			return bad("declares no names")
		}
		for i := range n.Children {
			if err := childIs(i, KindID); err != nil {
				return err
			}
		}
	case KindFuncDecl, KindMainFuncDecl:
		if err := want(3); err != nil {
			return err
		}
		if err := childIs(0, KindID); err != nil {
			return err
		}
		if err := childIs(1, KindParameters); err != nil {
			return err
		}
		return childIs(2, KindBlock)
	case KindParameters:
		for i := range n.Children {
			if err := childIs(i, KindParameter); err != nil {
				return err
			}
		}
	case KindParameter:
		if err := want(1); err != nil {
			return err
		}
		return childIs(0, KindID)
	case KindBlock:
		for i, child := range n.Children {
			k := t.Kind(child)
			switch {
			case k == KindVarDecl, k == KindBlock, k.IsConditional(), k == KindBreak,
				k == KindReturn, k == KindVoidStmt, k == KindFuncCall, k.IsAssign():
			default:
				return bad("child %d is not a statement: %s", i, k)
			}
		}
	case KindIf, KindWhile:
		if err := want(2); err != nil {
			return err
		}
		if err := childIsExpr(0); err != nil {
			return err
		}
		return childIs(1, KindBlock)
	case KindIfElse:
		if err := want(3); err != nil {
			return err
		}
		if err := childIsExpr(0); err != nil {
			return err
		}
		if err := childIs(1, KindBlock); err != nil {
			return err
		}
		return childIs(2, KindBlock)
	case KindBreak, KindTrue, KindFalse:
		return want(0)
	case KindReturn:
		if len(n.Children) > 1 {
			return bad("expected at most 1 child, got %d", len(n.Children))
		}
		if len(n.Children) == 1 {
			return childIsExpr(0)
		}
	case KindVoidStmt, KindArgument:
		if err := want(1); err != nil {
			return err
		}
		return childIsExpr(0)
	case KindFuncCall:
		if err := want(2); err != nil {
			return err
		}
		if err := childIs(0, KindID); err != nil {
			return err
		}
		return childIs(1, KindArguments)
	case KindArguments:
		for i := range n.Children {
			if err := childIs(i, KindArgument); err != nil {
				return err
			}
		}
	case KindID:
		if n.Attr == "" {
			return bad("missing name")
		}
		return want(0)
	case KindNumber:
		if n.Attr == "" {
			return bad("missing digits")
		}
		return want(0)
	case KindString:
		return want(0)
	case KindAssign, KindAddAssign, KindSubAssign, KindMulAssign, KindDivAssign, KindModAssign:
		if err := want(2); err != nil {
			return err
		}
		if err := childIs(0, KindID); err != nil {
			return err
		}
		return childIsExpr(1)
	case KindAdd, KindSub, KindMul, KindDiv, KindMod, KindAnd, KindOr,
		KindEq, KindNe, KindLt, KindGt, KindLe, KindGe:
		if err := want(2); err != nil {
			return err
		}
		if err := childIsExpr(0); err != nil {
			return err
		}
		return childIsExpr(1)
	case KindNeg, KindNot:
		if err := want(1); err != nil {
			return err
		}
		return childIsExpr(0)
	case KindInvalid, kindCount:
		return bad("invalid node kind")
	}
	return nil
}
