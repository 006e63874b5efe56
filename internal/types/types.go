// Package types holds the resolved type tags written into the tree by the
// analyzer: the primitive tags and canonical call signatures.
package types

import (
	"fmt"
	"strings"
)

// Type is a resolved type tag. Primitive tags are plain words; function
// types are canonical signatures such as "f(int, bool)". The zero value
// means "not resolved yet".
type Type string

const (
	Invalid Type = ""
	Int     Type = "int"
	Bool    Type = "bool"
	Void    Type = "void"
	String  Type = "string"

	// VariadicString is the signature of the formatted-output primitive:
	// a string followed by any number of further arguments.
	VariadicString Type = "f(string, ...)"
)

const (
	signaturePrefix = "f("
	variadicMarker  = "..."
)

// IsValid reports whether t has been resolved.
func (t Type) IsValid() bool { return t != Invalid }

// IsSignature reports whether t is a call signature rather than a value type.
func (t Type) IsSignature() bool {
	return strings.HasPrefix(string(t), signaturePrefix) && strings.HasSuffix(string(t), ")")
}

// IsVariadicString reports whether t is the variadic-string signature.
func (t Type) IsVariadicString() bool { return t == VariadicString }

// IsValue reports whether t can be held in a variable or parameter.
func (t Type) IsValue() bool { return t == Int || t == Bool }

func (t Type) String() string {
	if t == Invalid {
		return "<unresolved>"
	}
	return string(t)
}

// Signature builds the canonical signature for an ordered parameter list.
func Signature(params ...Type) Type {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = string(p)
	}
	return Type(signaturePrefix + strings.Join(parts, ", ") + ")")
}

// Params splits a canonical signature back into its parameter types. The
// variadic marker is returned as-is.
func (t Type) Params() []Type {
	if !t.IsSignature() {
		return nil
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(string(t), signaturePrefix), ")")
	if inner == "" {
		return nil
	}
	fields := strings.Split(inner, ", ")
	out := make([]Type, len(fields))
	for i, f := range fields {
		out[i] = Type(f)
	}
	return out
}

// Arity is the number of declared parameters; variadic signatures report the
// fixed prefix only.
func (t Type) Arity() int {
	n := 0
	for _, p := range t.Params() {
		if p == variadicMarker {
			break
		}
		n++
	}
	return n
}

// ParseDeclared converts a type name written in a declaration.
func ParseDeclared(name string) (Type, error) {
	switch Type(name) {
	case Int, Bool, Void:
		return Type(name), nil
	}
	return Invalid, fmt.Errorf("unknown type %q", name)
}
