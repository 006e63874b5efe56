package diag

import (
	"errors"
	"fmt"
)

// Error is the fail-fast carrier used by analysis and code generation: the
// first problem found becomes an *Error and aborts the compilation.
type Error struct {
	Diag Diagnostic
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s: %s", e.Diag.Location(), e.Diag.Code.ID(), e.Diag.Message)
}

// Errorf builds an *Error with SevError severity.
func Errorf(code Code, line uint32, format string, args ...any) *Error {
	return &Error{Diag: NewError(code, line, fmt.Sprintf(format, args...))}
}

// WithNote appends a note and returns the same error for chaining.
func (e *Error) WithNote(line uint32, msg string) *Error {
	e.Diag = e.Diag.WithNote(line, msg)
	return e
}

// AsError unwraps err into an *Error if one is present in the chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Internalf reports a generator bug rather than a user error.
func Internalf(line uint32, format string, args ...any) *Error {
	return Errorf(GenInternal, line, format, args...)
}
