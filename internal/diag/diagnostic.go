package diag

import "fmt"

// Note adds secondary context to a diagnostic, e.g. "previous declaration here".
type Note struct {
	Line uint32
	Msg  string
}

// Diagnostic is a single finding. Line is the source line carried by the
// offending tree node; Path is filled in by the driver.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Line     uint32
	Notes    []Note
}

func New(sev Severity, code Code, line uint32, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Line:     line,
		Message:  msg,
	}
}

func NewError(code Code, line uint32, msg string) Diagnostic {
	return New(SevError, code, line, msg)
}

func (d Diagnostic) WithNote(line uint32, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Line: line, Msg: msg})
	return d
}

// Location renders "path:line" (or "line N" when no path is known).
func (d Diagnostic) Location() string {
	if d.Path == "" {
		return fmt.Sprintf("line %d", d.Line)
	}
	return fmt.Sprintf("%s:%d", d.Path, d.Line)
}
