package types

import "testing"

func TestSignatureRoundTrip(t *testing.T) {
	sig := Signature(Int, Bool)
	if sig != "f(int, bool)" {
		t.Fatalf("unexpected signature %q", sig)
	}
	if !sig.IsSignature() {
		t.Fatalf("expected signature")
	}
	params := sig.Params()
	if len(params) != 2 || params[0] != Int || params[1] != Bool {
		t.Fatalf("unexpected params %v", params)
	}
	if Signature() != "f()" {
		t.Fatalf("empty signature: %q", Signature())
	}
	if len(Signature().Params()) != 0 {
		t.Fatalf("empty signature must have no params")
	}
}

func TestVariadicArity(t *testing.T) {
	if !VariadicString.IsVariadicString() {
		t.Fatalf("expected variadic string")
	}
	if got := VariadicString.Arity(); got != 1 {
		t.Fatalf("expected arity 1, got %d", got)
	}
	if Int.IsSignature() {
		t.Fatalf("int is not a signature")
	}
}

func TestParseDeclared(t *testing.T) {
	for _, name := range []string{"int", "bool", "void"} {
		if _, err := ParseDeclared(name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := ParseDeclared("string"); err == nil {
		t.Fatalf("string is not declarable")
	}
}
