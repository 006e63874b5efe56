package sema

import "kestrel/internal/ast"

// Action tells Walk what to do after a pre-order hook.
type Action uint8

const (
	// Descend visits the children and then runs the post-order hook.
	Descend Action = iota
	// Prune skips the children and the post-order hook: the pre-order hook
	// has handled the whole subtree.
	Prune
)

// PreFunc runs before the children of a node.
type PreFunc func(id ast.NodeID, n *ast.Node) (Action, error)

// PostFunc runs after the children of a node.
type PostFunc func(id ast.NodeID, n *ast.Node) error

// Walk traverses the subtree rooted at root depth-first. Either hook may be
// nil. The first error stops the traversal and is returned unchanged.
func Walk(tree *ast.Tree, root ast.NodeID, pre PreFunc, post PostFunc) error {
	n := tree.Get(root)
	if n == nil {
		return nil
	}
	if pre != nil {
		action, err := pre(root, n)
		if err != nil {
			return err
		}
		if action == Prune {
			return nil
		}
	}
	for _, child := range n.Children {
		if err := Walk(tree, child, pre, post); err != nil {
			return err
		}
	}
	if post != nil {
		return post(root, tree.Get(root))
	}
	return nil
}
