package arm64

import (
	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/sema"
)

// statement generates one statement and checks that it released every
// register it allocated.
func (g *Generator) statement(id ast.NodeID, n *ast.Node) error {
	before := g.regs.Allocated()
	if g.opts.Annotate {
		g.fn.body.comment("line %d: %s", n.Line, n.Kind)
	}
	if err := g.genStmt(id, n); err != nil {
		return err
	}
	if after := g.regs.Allocated(); !sameRegs(before, after) {
		return diag.Internalf(n.Line, "%s leaks registers: [%s] before, [%s] after",
			n.Kind, regNames(before), regNames(after))
	}
	return nil
}

func (g *Generator) genStmt(id ast.NodeID, n *ast.Node) error {
	s := &g.fn.body
	switch n.Kind {
	case ast.KindIf:
		after := g.newLabel()
		if err := g.branchIfFalse(n.Children[0], after); err != nil {
			return err
		}
		if err := g.block(n.Children[1]); err != nil {
			return err
		}
		s.label(after)

	case ast.KindIfElse:
		elseLabel, after := g.newLabel(), g.newLabel()
		if err := g.branchIfFalse(n.Children[0], elseLabel); err != nil {
			return err
		}
		if err := g.block(n.Children[1]); err != nil {
			return err
		}
		s.ins("b %s", after)
		s.label(elseLabel)
		if err := g.block(n.Children[2]); err != nil {
			return err
		}
		s.label(after)

	case ast.KindWhile:
		test, after := g.newLabel(), g.newLabel()
		s.label(test)
		if err := g.branchIfFalse(n.Children[0], after); err != nil {
			return err
		}
		g.fn.loopExits = append(g.fn.loopExits, after)
		err := g.block(n.Children[1])
		g.fn.loopExits = g.fn.loopExits[:len(g.fn.loopExits)-1]
		if err != nil {
			return err
		}
		s.ins("b %s", test)
		s.label(after)

	case ast.KindBreak:
		if len(g.fn.loopExits) == 0 {
			return diag.Internalf(n.Line, "break outside of a loop reached the generator")
		}
		s.ins("b %s", g.fn.loopExits[len(g.fn.loopExits)-1])

	case ast.KindReturn:
		if len(n.Children) == 1 {
			r, err := g.expr(n.Children[0])
			if err != nil {
				return err
			}
			s.ins("mov w0, %s", r.W())
			if err := g.free(n.Line, r); err != nil {
				return err
			}
		}
		s.ins("b %s", exitLabel(g.fn.name))

	case ast.KindVoidStmt:
		return g.discard(n.Children[0], n.Line)

	default:
		if n.Kind.IsExpr() {
			return g.discard(id, n.Line)
		}
		return diag.Internalf(n.Line, "unexpected %s in statement position", n.Kind)
	}
	return nil
}

// discard evaluates an expression for its effects.
func (g *Generator) discard(expr ast.NodeID, line uint32) error {
	r, err := g.expr(expr)
	if err != nil {
		return err
	}
	return g.free(line, r)
}

// block generates a nested block with the same hooks as the function body.
func (g *Generator) block(id ast.NodeID) error {
	return sema.Walk(g.tree, id, g.pre, g.post)
}

// branchIfFalse evaluates a condition and jumps to target when it is 0.
func (g *Generator) branchIfFalse(cond ast.NodeID, target string) error {
	r, err := g.expr(cond)
	if err != nil {
		return err
	}
	g.fn.body.ins("cbz %s, %s", r.W(), target)
	return g.free(g.tree.Get(cond).Line, r)
}
