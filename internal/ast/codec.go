package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"kestrel/internal/diag"
)

// Format selects the tree interchange encoding.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// FormatForPath picks the encoding from the file suffix.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".mp", ".msgpack":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("%s: unknown tree format (expected .json, .mp or .msgpack)", path)
}

// Document is the nested, self-describing form of one node. It is what an
// external parser writes and what Decode reads.
type Document struct {
	Kind     string     `json:"kind" msgpack:"kind"`
	Line     uint32     `json:"line,omitempty" msgpack:"line,omitempty"`
	Attr     string     `json:"attr,omitempty" msgpack:"attr,omitempty"`
	Children []Document `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Decode reads one document and builds a tree from it.
func Decode(r io.Reader, format Format) (*Tree, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&doc)
	default:
		return nil, fmt.Errorf("unsupported tree format %v", format)
	}
	if err != nil {
		return nil, diag.Errorf(diag.IODecode, 0, "decode %s tree: %v", format, err)
	}
	return FromDocument(doc)
}

// FromDocument converts a document into an arena tree.
func FromDocument(doc Document) (*Tree, error) {
	b := NewBuilder(Hints{})
	root, err := b.document(doc, 0)
	if err != nil {
		return nil, err
	}
	return b.Finish(root), nil
}

func (b *Builder) document(doc Document, depth int) (NodeID, error) {
	if depth > maxDepth {
		return NoNodeID, diag.Errorf(diag.IODecode, doc.Line, "tree nesting deeper than %d", maxDepth)
	}
	kind, err := ParseKind(doc.Kind)
	if err != nil {
		return NoNodeID, diag.Errorf(diag.IODecode, doc.Line, "%v", err)
	}
	children := make([]NodeID, 0, len(doc.Children))
	for _, child := range doc.Children {
		id, err := b.document(child, depth+1)
		if err != nil {
			return NoNodeID, err
		}
		children = append(children, id)
	}
	return b.NewAt(kind, doc.Line, doc.Attr, children...), nil
}

// ToDocument converts the subtree rooted at id back to its nested form.
func (t *Tree) ToDocument(id NodeID) Document {
	n := t.Get(id)
	if n == nil {
		return Document{}
	}
	doc := Document{Kind: n.Kind.String(), Line: n.Line, Attr: n.Attr}
	if len(n.Children) > 0 {
		doc.Children = make([]Document, len(n.Children))
		for i, child := range n.Children {
			doc.Children[i] = t.ToDocument(child)
		}
	}
	return doc
}

// Encode writes the whole tree.
func Encode(w io.Writer, t *Tree, format Format) error {
	doc := t.ToDocument(t.Root)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(&doc)
	}
	return fmt.Errorf("unsupported tree format %v", format)
}
