package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"kestrel/internal/diag"
)

type palette struct {
	err, warn, info, code, loc, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.FgMagenta),
		loc:  color.New(color.Bold),
		note: color.New(color.FgBlue, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.loc, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее):
//
//	<path>:<line>: <SEV> <CODE>: <Message>
//	  note: <path>:<line>: <Message>
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		path := formatPath(d.Path, opts.PathMode, opts.BaseDir)
		msg := d.Message
		if opts.Width > 0 {
			msg = runewidth.Truncate(msg, opts.Width, "…")
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.loc.Sprint(location(path, d.Line)),
			p.severity(d.Severity).Sprint(d.Severity),
			p.code.Sprint(d.Code.ID()),
			msg,
		); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(path, n.Line), n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Short prints one line per diagnostic: path:line: CODE message.
func Short(w io.Writer, bag *diag.Bag, mode PathMode, base string) error {
	if bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		path := formatPath(d.Path, mode, base)
		if _, err := fmt.Fprintf(w, "%s: %s %s\n", location(path, d.Line), d.Code.ID(), d.Message); err != nil {
			return err
		}
	}
	return nil
}
