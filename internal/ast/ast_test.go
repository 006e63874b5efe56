package ast

import (
	"bytes"
	"strings"
	"testing"

	"kestrel/internal/diag"
)

func TestParseKindInvertsString(t *testing.T) {
	for k := KindProgram; k < kindCount; k++ {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseKind("lambda"); err == nil {
		t.Fatalf("unknown kind must fail")
	}
}

func TestKindClassification(t *testing.T) {
	if !KindModAssign.IsAssign() || KindAdd.IsAssign() {
		t.Fatalf("assign classification broken")
	}
	if !KindGe.IsRelational() || KindEq.IsRelational() {
		t.Fatalf("relational classification broken")
	}
	if KindDivAssign.ArithmeticOf() != KindDiv {
		t.Fatalf("expected /= to map to /")
	}
	if !KindFuncCall.IsExpr() || KindVoidStmt.IsExpr() {
		t.Fatalf("expression classification broken")
	}
}

const sampleJSON = `{
  "kind": "program", "line": 1,
  "children": [
    {"kind": "globVarDecl", "line": 1, "attr": "int", "children": [{"kind": "id", "line": 1, "attr": "x"}]},
    {"kind": "mainFuncDecl", "line": 2, "attr": "void", "children": [
      {"kind": "id", "line": 2, "attr": "main"},
      {"kind": "parameters", "line": 2},
      {"kind": "block", "line": 2, "children": [
        {"kind": "=", "line": 3, "children": [
          {"kind": "id", "line": 3, "attr": "x"},
          {"kind": "+", "line": 3, "children": [
            {"kind": "number", "line": 3, "attr": "1"},
            {"kind": "*", "line": 3, "children": [
              {"kind": "number", "line": 3, "attr": "2"},
              {"kind": "number", "line": 3, "attr": "3"}
            ]}
          ]}
        ]}
      ]}
    ]}
  ]
}`

func TestDecodeJSONBuildsValidTree(t *testing.T) {
	tree, err := Decode(strings.NewReader(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	main := tree.Child(tree.Root, 1)
	if tree.Kind(main) != KindMainFuncDecl || tree.FuncName(main) != "main" {
		t.Fatalf("unexpected second item %s %q", tree.Kind(main), tree.FuncName(main))
	}
	assign := tree.Child(tree.FuncBody(main), 0)
	if n := tree.Get(assign); n.Kind != KindAssign || n.Line != 3 {
		t.Fatalf("unexpected statement %+v", n)
	}
}

func TestMsgpackCarriesSameTree(t *testing.T) {
	tree, err := Decode(strings.NewReader(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, tree, FormatMsgpack); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(&buf, FormatMsgpack)
	if err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}
	if again.Len() != tree.Len() {
		t.Fatalf("node count changed: %d -> %d", tree.Len(), again.Len())
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"kind":"lambda","line":4}`), FormatJSON)
	de, ok := diag.AsError(err)
	if !ok || de.Diag.Code != diag.IODecode || de.Diag.Line != 4 {
		t.Fatalf("expected IODecode at line 4, got %v", err)
	}
}

func TestValidateReportsShapeErrors(t *testing.T) {
	b := NewBuilder(Hints{})
	bad := b.At(5).New(KindIf, "", b.Number("1"))
	tree := b.Finish(b.Program(b.Main("main", "void", nil, bad)))
	err := tree.Validate()
	de, ok := diag.AsError(err)
	if !ok || de.Diag.Code != diag.SemaMalformedTree || de.Diag.Line != 5 {
		t.Fatalf("expected malformed tree at line 5, got %v", err)
	}
}

func TestFormatForPath(t *testing.T) {
	if f, err := FormatForPath("a/prog.json"); err != nil || f != FormatJSON {
		t.Fatalf("json: %v %v", f, err)
	}
	if f, err := FormatForPath("prog.MP"); err != nil || f != FormatMsgpack {
		t.Fatalf("mp: %v %v", f, err)
	}
	if _, err := FormatForPath("prog.sg"); err == nil {
		t.Fatalf("unknown suffix must fail")
	}
}
