package diagfmt

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths relative to BaseDir when they are inside it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// Format selects the renderer.
type Format uint8

const (
	FormatPretty Format = iota
	FormatShort
	FormatJSON
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty":
		return FormatPretty, nil
	case "short":
		return FormatShort, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("unknown diagnostics format %q (must be pretty, short or json)", s)
}

// ColorMode is the user's --color choice.
type ColorMode uint8

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "on", "always", "true":
		return ColorOn, nil
	case "off", "never", "false":
		return ColorOff, nil
	}
	return 0, fmt.Errorf("unknown color mode %q (must be auto, on or off)", s)
}

// Enabled resolves auto against f: color only on a terminal.
func (m ColorMode) Enabled(f *os.File) bool {
	switch m {
	case ColorOn:
		return true
	case ColorOff:
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	Width     int // максимальная ширина сообщения, 0 - не ограничено
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}
