package driver

import (
	"bytes"
	"os"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
)

// Source is a tree file read from disk but not decoded yet.
type Source struct {
	Path   string
	Format ast.Format
	Data   []byte
}

// ReadSource reads path and picks its format from the suffix.
func ReadSource(path string) (*Source, error) {
	format, err := ast.FormatForPath(path)
	if err != nil {
		return nil, diag.Errorf(diag.IOLoadFailed, 0, "%v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Errorf(diag.IOLoadFailed, 0, "read %s: %v", path, err)
	}
	return &Source{Path: path, Format: format, Data: data}, nil
}

// Tree decodes the source and checks its shape.
func (s *Source) Tree() (*ast.Tree, error) {
	tree, err := ast.Decode(bytes.NewReader(s.Data), s.Format)
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

// LoadTree reads, decodes and validates a tree file.
func LoadTree(path string) (*ast.Tree, error) {
	src, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	tree, err := src.Tree()
	return tree, withPath(err, path)
}

// withPath stamps path onto a diagnostic error that has none.
func withPath(err error, path string) error {
	if de, ok := diag.AsError(err); ok && de.Diag.Path == "" {
		de.Diag.Path = path
	}
	return err
}
