package arm64

import (
	"fmt"
	"strings"
)

// sink collects assembly one line at a time.
type sink struct {
	buf strings.Builder
}

// ins writes one indented instruction or directive.
func (s *sink) ins(format string, args ...any) {
	s.buf.WriteByte('\t')
	fmt.Fprintf(&s.buf, format, args...)
	s.buf.WriteByte('\n')
}

func (s *sink) label(name string) {
	s.buf.WriteString(name)
	s.buf.WriteString(":\n")
}

func (s *sink) comment(format string, args ...any) {
	s.buf.WriteString("\t// ")
	fmt.Fprintf(&s.buf, format, args...)
	s.buf.WriteByte('\n')
}

func (s *sink) blank() { s.buf.WriteByte('\n') }

func (s *sink) append(other *sink) { s.buf.WriteString(other.buf.String()) }

func (s *sink) String() string { return s.buf.String() }

// movImm loads a 32-bit constant into the low half of r.
func (s *sink) movImm(r Reg, v int64) {
	bits := uint32(v)
	switch {
	case v >= 0 && v <= 0xffff:
		s.ins("mov %s, #%d", r.W(), v)
	case v < 0 && v >= -0x10000:
		s.ins("mov %s, #%d", r.W(), v)
	default:
		s.ins("movz %s, #%d", r.W(), bits&0xffff)
		if hi := bits >> 16; hi != 0 {
			s.ins("movk %s, #%d, lsl #16", r.W(), hi)
		}
	}
}

// addr puts the address of a data label into the 64-bit register name.
func (s *sink) addr(reg, label string) {
	s.ins("adrp %s, %s", reg, label)
	s.ins("add %s, %s, :lo12:%s", reg, reg, label)
}

// spAdjust moves sp by delta bytes (negative reserves).
func (s *sink) spAdjust(delta int32) {
	switch {
	case delta < 0:
		s.ins("sub sp, sp, #%d", -delta)
	case delta > 0:
		s.ins("add sp, sp, #%d", delta)
	}
}

// asmQuote renders s as a GNU as string literal.
func asmQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
