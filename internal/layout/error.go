package layout

import (
	"fmt"

	"kestrel/internal/symbols"
)

// ErrorKind enumerates frame layout failures.
type ErrorKind uint8

const (
	// ErrFrameTooLarge: the frame does not fit the target's immediate offsets.
	ErrFrameTooLarge ErrorKind = iota + 1
	// ErrDuplicateSlot: a symbol was added to a frame twice.
	ErrDuplicateSlot
	// ErrUnbalanced: the stack pointer was released more than it was moved.
	ErrUnbalanced
)

// Error is returned by Frame operations.
type Error struct {
	Kind  ErrorKind
	Frame string
	Sym   symbols.SymbolID
	Size  int32
	Limit int32
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrFrameTooLarge:
		return fmt.Sprintf("frame of %q needs %d bytes, limit is %d", e.Frame, e.Size, e.Limit)
	case ErrDuplicateSlot:
		return fmt.Sprintf("frame of %q: symbol #%d already has a slot", e.Frame, e.Sym)
	case ErrUnbalanced:
		return fmt.Sprintf("frame of %q: stack released below function entry (%d bytes)", e.Frame, e.Size)
	default:
		if e.Err != nil {
			return fmt.Sprintf("frame of %q: %v", e.Frame, e.Err)
		}
		return fmt.Sprintf("frame of %q: layout error", e.Frame)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
