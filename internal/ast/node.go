package ast

import (
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// NodeID addresses a node in the tree arena (1-based).
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

// Node is one tree element. Type and Sym are the analysis slots; everything
// else is fixed once the tree is built.
type Node struct {
	Kind     Kind
	Children []NodeID
	Attr     string
	Line     uint32

	Type types.Type
	Sym  symbols.SymbolID
}

// Tree owns every node of one compilation unit.
type Tree struct {
	Nodes *Arena[Node]
	Root  NodeID
}

// Get returns the node pointer or nil for an invalid ID.
func (t *Tree) Get(id NodeID) *Node {
	if t == nil || t.Nodes == nil {
		return nil
	}
	return t.Nodes.Get(uint32(id))
}

// Child returns the i-th child of id, or NoNodeID.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.Get(id)
	if n == nil || i < 0 || i >= len(n.Children) {
		return NoNodeID
	}
	return n.Children[i]
}

// Kind is a shortcut for Get(id).Kind.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Get(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Len reports the number of nodes.
func (t *Tree) Len() int {
	if t == nil || t.Nodes == nil {
		return 0
	}
	return int(t.Nodes.Len())
}

// ResetAnnotations clears Type and Sym on every node.
func (t *Tree) ResetAnnotations() {
	if t == nil || t.Nodes == nil {
		return
	}
	nodes := t.Nodes.Slice()
	for i := range nodes {
		nodes[i].Type = types.Invalid
		nodes[i].Sym = symbols.NoSymbolID
	}
}

// FuncName returns the declared name of a funcDecl/mainFuncDecl node.
func (t *Tree) FuncName(fn NodeID) string {
	if id := t.Get(t.Child(fn, 0)); id != nil {
		return id.Attr
	}
	return ""
}

// FuncParams returns the parameter nodes of a function declaration.
func (t *Tree) FuncParams(fn NodeID) []NodeID {
	if params := t.Get(t.Child(fn, 1)); params != nil {
		return params.Children
	}
	return nil
}

// FuncBody returns the body block of a function declaration.
func (t *Tree) FuncBody(fn NodeID) NodeID {
	return t.Child(fn, 2)
}

// CallArgs returns the expression of every argument of a funcCall node.
func (t *Tree) CallArgs(call NodeID) []NodeID {
	args := t.Get(t.Child(call, 1))
	if args == nil {
		return nil
	}
	out := make([]NodeID, 0, len(args.Children))
	for _, arg := range args.Children {
		out = append(out, t.Child(arg, 0))
	}
	return out
}
