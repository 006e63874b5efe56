package ast

import (
	"fmt"
	"io"
	"strings"

	"kestrel/internal/symbols"
)

// Dump prints the tree one node per line with its analysis slots:
//
//	12 funcCall : void -> printf
//
// names resolves symbol IDs; it may be nil.
func Dump(w io.Writer, t *Tree, names func(symbols.SymbolID) string) error {
	if t == nil {
		return nil
	}
	return dumpNode(w, t, t.Root, 0, names)
}

func dumpNode(w io.Writer, t *Tree, id NodeID, depth int, names func(symbols.SymbolID) string) error {
	n := t.Get(id)
	if n == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%4d %s%s", n.Line, strings.Repeat("  ", depth), n.Kind)
	if n.Attr != "" {
		fmt.Fprintf(&b, " %q", n.Attr)
	}
	if n.Type.IsValid() {
		fmt.Fprintf(&b, " : %s", n.Type)
	}
	if n.Sym.IsValid() && names != nil {
		fmt.Fprintf(&b, " -> %s", names(n.Sym))
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := dumpNode(w, t, child, depth+1, names); err != nil {
			return err
		}
	}
	return nil
}
