package symbols

import (
	"errors"
	"fmt"
)

// FrameKind enumerates supported scope frame categories.
type FrameKind uint8

const (
	FrameInvalid  FrameKind = iota
	FrameBuiltin            // runtime primitives
	FrameGlobal             // top-level declarations
	FrameFunction           // parameters and top-level locals of one function
	FrameBlock              // if / if-else / while bodies
)

func (k FrameKind) String() string {
	switch k {
	case FrameBuiltin:
		return "builtin"
	case FrameGlobal:
		return "global"
	case FrameFunction:
		return "function"
	case FrameBlock:
		return "block"
	default:
		return "invalid"
	}
}

// ErrNoScope is returned by Insert and Close when no frame is open.
var ErrNoScope = errors.New("no scope frame is open")

type frame struct {
	kind  FrameKind
	names map[string]SymbolID
	order []SymbolID
}

// Stack implements lexical scoping as an ordered list of name→symbol frames.
// Lookup scans innermost to outermost; redefinition is only checked against
// the current frame, so shadowing across frames is legal.
type Stack struct {
	arena  *Symbols
	frames []frame
}

// NewStack opens the builtin frame and installs the prelude into it.
func NewStack(arena *Symbols, custom []PreludeEntry) (*Stack, error) {
	if arena == nil {
		arena = NewSymbols(0)
	}
	s := &Stack{
		arena:  arena,
		frames: make([]frame, 0, 8),
	}
	s.Open(FrameBuiltin)
	for _, entry := range mergePrelude(custom) {
		sym := Symbol{
			Name:      entry.Name,
			Kind:      SymbolBuiltin,
			Signature: entry.Signature,
			Type:      entry.Result,
		}
		if err := sym.SetLabel(entry.Label); err != nil {
			return nil, err
		}
		if err := s.Insert(entry.Name, arena.New(sym)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Arena exposes the symbol storage backing the stack.
func (s *Stack) Arena() *Symbols { return s.arena }

// Open pushes a fresh frame.
func (s *Stack) Open(kind FrameKind) {
	s.frames = append(s.frames, frame{
		kind:  kind,
		names: make(map[string]SymbolID),
	})
}

// Close pops the current frame.
func (s *Stack) Close() error {
	if len(s.frames) == 0 {
		return ErrNoScope
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Insert binds name in the current frame, replacing nothing: callers check
// DefinedInCurrent first.
func (s *Stack) Insert(name string, id SymbolID) error {
	if len(s.frames) == 0 {
		return fmt.Errorf("insert %q: %w", name, ErrNoScope)
	}
	top := &s.frames[len(s.frames)-1]
	top.names[name] = id
	top.order = append(top.order, id)
	return nil
}

// Find scans frames innermost→outermost.
func (s *Stack) Find(name string) (SymbolID, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if id, ok := s.frames[i].names[name]; ok {
			return id, true
		}
	}
	return NoSymbolID, false
}

// DefinedInCurrent checks the top frame only.
func (s *Stack) DefinedInCurrent(name string) (SymbolID, bool) {
	if len(s.frames) == 0 {
		return NoSymbolID, false
	}
	id, ok := s.frames[len(s.frames)-1].names[name]
	return id, ok
}

// CurrentKind returns the kind of the innermost frame.
func (s *Stack) CurrentKind() FrameKind {
	if len(s.frames) == 0 {
		return FrameInvalid
	}
	return s.frames[len(s.frames)-1].kind
}

// Depth returns the number of open frames.
func (s *Stack) Depth() int { return len(s.frames) }

// Declared returns the symbols of the current frame in declaration order.
func (s *Stack) Declared() []SymbolID {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1].order
}
