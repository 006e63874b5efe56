package symbols

import (
	"fmt"

	"kestrel/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolBuiltin
	SymbolFunction
	SymbolGlobal
	SymbolLocal
	SymbolParam
	// SymbolConst is a synthetic symbol attached to string literals by the
	// code generator; it only carries a data label.
	SymbolConst
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolBuiltin:
		return "builtin"
	case SymbolFunction:
		return "function"
	case SymbolGlobal:
		return "global"
	case SymbolLocal:
		return "local"
	case SymbolParam:
		return "param"
	case SymbolConst:
		return "const"
	default:
		return "invalid"
	}
}

// Symbol is the record shared by the scope stack and every node that
// references a declaration. Storage is write-once: a symbol ends up with
// exactly one of a frame offset or a global label.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Signature types.Type // functions: canonical signature; variables: declared type
	Type      types.Type // return type for functions, value type otherwise
	Line      uint32

	offset    int32
	hasOffset bool
	label     string

	// CallerSpill is the number of bytes a call site placed between the
	// stack-passed arguments and the callee's entry stack pointer.
	CallerSpill   int32
	spillRecorded bool

	// CalleeSaved lists the callee-saved registers the function preserves.
	CalleeSaved []string
}

// IsCallable reports whether the symbol names a function.
func (s *Symbol) IsCallable() bool {
	return s.Kind == SymbolFunction || s.Kind == SymbolBuiltin
}

// IsVariable reports whether the symbol names a storage slot.
func (s *Symbol) IsVariable() bool {
	return s.Kind == SymbolGlobal || s.Kind == SymbolLocal || s.Kind == SymbolParam
}

// SetOffset fixes the frame offset. Fails if any location is already set.
func (s *Symbol) SetOffset(off int32) error {
	if s.hasOffset || s.label != "" {
		return fmt.Errorf("symbol %q: storage already assigned", s.Name)
	}
	s.offset = off
	s.hasOffset = true
	return nil
}

// SetLabel fixes the global data label. Fails if any location is already set.
func (s *Symbol) SetLabel(label string) error {
	if label == "" {
		return fmt.Errorf("symbol %q: empty label", s.Name)
	}
	if s.hasOffset || s.label != "" {
		return fmt.Errorf("symbol %q: storage already assigned", s.Name)
	}
	s.label = label
	return nil
}

// Offset returns the frame offset relative to the current stack pointer.
func (s *Symbol) Offset() (int32, bool) { return s.offset, s.hasOffset }

// Label returns the global label.
func (s *Symbol) Label() (string, bool) { return s.label, s.label != "" }

// HasStorage reports whether a location has been assigned.
func (s *Symbol) HasStorage() bool { return s.hasOffset || s.label != "" }

// Shift re-bases a frame offset after the stack pointer moved by -delta.
// Symbols with a label are left untouched.
func (s *Symbol) Shift(delta int32) {
	if s.hasOffset {
		s.offset += delta
	}
}

// RecordCallerSpill stores the spill bytes reported by a call site. Every
// call site of the same callee must report the same amount.
func (s *Symbol) RecordCallerSpill(bytes int32) error {
	if s.spillRecorded && s.CallerSpill != bytes {
		return fmt.Errorf("symbol %q: call sites disagree on spill area (%d vs %d bytes)", s.Name, s.CallerSpill, bytes)
	}
	s.CallerSpill = bytes
	s.spillRecorded = true
	return nil
}

// SpillRecorded reports whether any call site recorded spill bytes.
func (s *Symbol) SpillRecorded() bool { return s.spillRecorded }

// ResetStorage clears codegen bookkeeping so a tree can be generated again.
func (s *Symbol) ResetStorage() {
	if s.Kind == SymbolBuiltin {
		return
	}
	s.offset, s.hasOffset, s.label = 0, false, ""
	s.CallerSpill, s.spillRecorded = 0, false
	s.CalleeSaved = nil
}
