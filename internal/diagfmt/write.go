package diagfmt

import (
	"io"

	"kestrel/internal/diag"
)

// Options bundle everything Write needs for any format.
type Options struct {
	Format   Format
	Color    bool
	PathMode PathMode
	BaseDir  string
	Width    int
}

// Write sorts bag and renders it in the requested format.
func Write(w io.Writer, bag *diag.Bag, opts Options) error {
	if bag == nil {
		return nil
	}
	bag.Sort()
	switch opts.Format {
	case FormatShort:
		return Short(w, bag, opts.PathMode, opts.BaseDir)
	case FormatJSON:
		return JSON(w, bag, JSONOpts{PathMode: opts.PathMode, BaseDir: opts.BaseDir, IncludeNotes: true})
	}
	return Pretty(w, bag, PrettyOpts{
		Color:     opts.Color,
		PathMode:  opts.PathMode,
		BaseDir:   opts.BaseDir,
		Width:     opts.Width,
		ShowNotes: true,
	})
}
