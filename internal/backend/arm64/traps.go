package arm64

import "fmt"

const (
	divTrapText         = "runtime error: division by zero at line %d\n"
	fallthroughTrapText = "runtime error: function %s reached the end of its body without returning a value (line %%d)\n"
)

// intern returns the read-only label holding text, creating it once.
func (g *Generator) intern(text string) string {
	if label, ok := g.constByText[text]; ok {
		return label
	}
	label := g.newConstLabel()
	g.consts = append(g.consts, constant{label: label, text: text})
	g.constByText[text] = label
	return label
}

// trap prints msg with line as its only argument and ends the program
// with status 1. Registers are not preserved: control never comes back.
func (g *Generator) trap(s *sink, msg string, line uint32) {
	s.addr("x0", g.intern(msg))
	s.movImm(Reg(1), int64(line))
	s.ins("bl printf")
	s.ins("mov w0, #1")
	s.ins("bl exit")
}

// guardDivisor branches around the division-by-zero trap when the
// divisor is non-zero.
func (g *Generator) guardDivisor(s *sink, divisor Reg, line uint32) {
	ok := g.newLabel()
	s.ins("cbnz %s, %s", divisor.W(), ok)
	g.trap(s, divTrapText, line)
	s.label(ok)
}

// fallthroughTrap is placed between the body of a typed function and its
// exit label; an explicit return branches past it.
func (g *Generator) fallthroughTrap(s *sink, name string, line uint32) {
	g.trap(s, fmt.Sprintf(fallthroughTrapText, name), line)
}
