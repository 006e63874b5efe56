package ast

// Hints provide an optional capacity suggestion for the node arena.
type Hints struct{ Nodes uint }

// Builder constructs a tree bottom-up. The parser and the interchange
// decoder both go through it; tests use the shorthand helpers.
type Builder struct {
	tree *Tree
	line uint32
}

func NewBuilder(hints Hints) *Builder {
	if hints.Nodes == 0 {
		hints.Nodes = 1 << 8
	}
	return &Builder{
		tree: &Tree{Nodes: NewArena[Node](hints.Nodes)},
		line: 1,
	}
}

// At sets the line number stamped on nodes created afterwards.
func (b *Builder) At(line uint32) *Builder {
	b.line = line
	return b
}

// New allocates a node with the current line.
func (b *Builder) New(kind Kind, attr string, children ...NodeID) NodeID {
	return b.NewAt(kind, b.line, attr, children...)
}

// NewAt allocates a node with an explicit line.
func (b *Builder) NewAt(kind Kind, line uint32, attr string, children ...NodeID) NodeID {
	kids := make([]NodeID, len(children))
	copy(kids, children)
	return NodeID(b.tree.Nodes.Allocate(Node{
		Kind:     kind,
		Children: kids,
		Attr:     attr,
		Line:     line,
	}))
}

// Finish sets root and returns the tree; the builder must not be reused.
func (b *Builder) Finish(root NodeID) *Tree {
	b.tree.Root = root
	return b.tree
}

func (b *Builder) Program(items ...NodeID) NodeID {
	return b.New(KindProgram, "", items...)
}

func (b *Builder) Ident(name string) NodeID {
	return b.New(KindID, name)
}

func (b *Builder) Number(digits string) NodeID {
	return b.New(KindNumber, digits)
}

func (b *Builder) Str(raw string) NodeID {
	return b.New(KindString, raw)
}

func (b *Builder) True() NodeID  { return b.New(KindTrue, "") }
func (b *Builder) False() NodeID { return b.New(KindFalse, "") }

// GlobalVar declares top-level variables of one type.
func (b *Builder) GlobalVar(typ string, names ...string) NodeID {
	return b.New(KindGlobVarDecl, typ, b.idents(names)...)
}

// LocalVar declares function-level variables of one type.
func (b *Builder) LocalVar(typ string, names ...string) NodeID {
	return b.New(KindVarDecl, typ, b.idents(names)...)
}

func (b *Builder) idents(names []string) []NodeID {
	ids := make([]NodeID, len(names))
	for i, n := range names {
		ids[i] = b.Ident(n)
	}
	return ids
}

// Param builds one parameter node.
func (b *Builder) Param(typ, name string) NodeID {
	return b.New(KindParameter, typ, b.Ident(name))
}

// Func builds a funcDecl with the given parameters and body statements.
func (b *Builder) Func(name, ret string, params []NodeID, body ...NodeID) NodeID {
	return b.function(KindFuncDecl, name, ret, params, body)
}

// Main builds the distinguished entry function.
func (b *Builder) Main(name, ret string, params []NodeID, body ...NodeID) NodeID {
	return b.function(KindMainFuncDecl, name, ret, params, body)
}

func (b *Builder) function(kind Kind, name, ret string, params, body []NodeID) NodeID {
	nameID := b.Ident(name)
	paramsID := b.New(KindParameters, "", params...)
	blockID := b.New(KindBlock, "", body...)
	return b.New(kind, ret, nameID, paramsID, blockID)
}

func (b *Builder) Block(stmts ...NodeID) NodeID {
	return b.New(KindBlock, "", stmts...)
}

func (b *Builder) If(cond NodeID, body ...NodeID) NodeID {
	return b.New(KindIf, "", cond, b.Block(body...))
}

func (b *Builder) IfElse(cond NodeID, then, els []NodeID) NodeID {
	return b.New(KindIfElse, "", cond, b.Block(then...), b.Block(els...))
}

func (b *Builder) While(cond NodeID, body ...NodeID) NodeID {
	return b.New(KindWhile, "", cond, b.Block(body...))
}

func (b *Builder) Break() NodeID { return b.New(KindBreak, "") }

// Return builds a return; value may be NoNodeID.
func (b *Builder) Return(value NodeID) NodeID {
	if !value.IsValid() {
		return b.New(KindReturn, "")
	}
	return b.New(KindReturn, "", value)
}

// Stmt wraps an expression used as a statement.
func (b *Builder) Stmt(expr NodeID) NodeID {
	return b.New(KindVoidStmt, "", expr)
}

// Call builds funcCall(id, arguments(argument(expr)...)).
func (b *Builder) Call(name string, args ...NodeID) NodeID {
	wrapped := make([]NodeID, len(args))
	for i, a := range args {
		wrapped[i] = b.New(KindArgument, "", a)
	}
	return b.New(KindFuncCall, "", b.Ident(name), b.New(KindArguments, "", wrapped...))
}

// Assign builds an assignment-family node targeting name.
func (b *Builder) Assign(op Kind, name string, value NodeID) NodeID {
	return b.New(op, "", b.Ident(name), value)
}

// Binary builds a binary operator node.
func (b *Builder) Binary(op Kind, lhs, rhs NodeID) NodeID {
	return b.New(op, "", lhs, rhs)
}

// Unary builds u- or !.
func (b *Builder) Unary(op Kind, operand NodeID) NodeID {
	return b.New(op, "", operand)
}
