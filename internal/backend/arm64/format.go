package arm64

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/sema"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// constant is one entry of the read-only data section.
type constant struct {
	label string
	text  string
}

// prepareStrings walks the whole tree before any code is emitted. Every
// string literal becomes a read-only constant and gets a synthetic symbol
// carrying its label. Format strings of printf-like calls are checked
// against their arguments and have {} placeholders turned into %d.
func (g *Generator) prepareStrings() error {
	type formatCall struct {
		callee string
		line   uint32
		args   []ast.NodeID
	}
	formats := make(map[ast.NodeID]formatCall)
	err := sema.Walk(g.tree, g.tree.Root, nil, func(id ast.NodeID, n *ast.Node) error {
		if n.Kind != ast.KindFuncCall {
			return nil
		}
		callee := g.sym(n.Sym)
		if callee == nil || !callee.Signature.IsVariadicString() {
			return nil
		}
		args := g.tree.CallArgs(id)
		if len(args) == 0 || g.tree.Kind(args[0]) != ast.KindString {
			return diag.Errorf(diag.GenFormatNotLiteral, n.Line, "format argument of %q must be a string literal", callee.Name)
		}
		formats[args[0]] = formatCall{callee: callee.Name, line: n.Line, args: args[1:]}
		return nil
	})
	if err != nil {
		return err
	}

	return sema.Walk(g.tree, g.tree.Root, nil, func(id ast.NodeID, n *ast.Node) error {
		if n.Kind != ast.KindString {
			return nil
		}
		call, isFormat := formats[id]
		text, count, err := translateString(n.Attr, isFormat, n.Line)
		if err != nil {
			return err
		}
		if isFormat {
			if count != len(call.args) {
				return diag.Errorf(diag.GenFormatArgCount, n.Line,
					"format string has %d placeholder(s) but %d argument(s) follow it", count, len(call.args))
			}
			// проверка типов только после совпадения количества
			for i, arg := range call.args {
				if t := g.tree.Get(arg).Type; t != types.Int {
					return diag.Errorf(diag.GenFormatArgType, call.line,
						"argument %d of %q fills a placeholder and must be int, got %s", i+2, call.callee, t)
				}
			}
		}
		return g.attachConstant(n, norm.NFC.String(text))
	})
}

// attachConstant interns text and binds n to a constant symbol for it.
func (g *Generator) attachConstant(n *ast.Node, text string) error {
	label := g.intern(text)
	id := g.syms.New(symbols.Symbol{
		Name: label,
		Kind: symbols.SymbolConst,
		Type: types.String,
		Line: n.Line,
	})
	if err := g.syms.Get(id).SetLabel(label); err != nil {
		return diag.Internalf(n.Line, "%v", err)
	}
	n.Sym = id
	return nil
}

// translateString resolves escapes in a raw literal. In format mode each
// {} becomes %d, a literal % is doubled and a lone brace is an error.
func translateString(raw string, format bool, line uint32) (string, int, error) {
	var b strings.Builder
	b.Grow(len(raw) + 4)
	count := 0
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\':
			if i+1 >= len(raw) {
				return "", 0, diag.Errorf(diag.GenFormatEscape, line, "string ends with a lone backslash")
			}
			i++
			switch esc := raw[i]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"', '\\', '{', '}':
				b.WriteByte(esc)
			default:
				return "", 0, diag.Errorf(diag.GenFormatEscape, line, "invalid escape sequence \\%c", esc)
			}
		case format && c == '{':
			if i+1 >= len(raw) || raw[i+1] != '}' {
				return "", 0, diag.Errorf(diag.GenFormatPlaceholder, line, "'{' must be immediately followed by '}'")
			}
			i++
			count++
			b.WriteString("%d")
		case format && c == '}':
			return "", 0, diag.Errorf(diag.GenFormatPlaceholder, line, "unmatched '}' in format string")
		case format && c == '%':
			b.WriteString("%%")
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), count, nil
}
