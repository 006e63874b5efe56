package main

import (
	"os"

	"github.com/spf13/cobra"

	"kestrel/internal/diag"
	"kestrel/internal/diagfmt"
	"kestrel/internal/driver"
	"kestrel/internal/observ"
)

func newBag() *diag.Bag { return diag.NewBag(sess().maxDiagnostics) }

// printDiagnostics renders bag on stderr in the session's format.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	s := sess()
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return diagfmt.Write(cmd.ErrOrStderr(), bag, diagfmt.Options{
		Format:   s.diagFormat,
		Color:    s.color,
		PathMode: diagfmt.PathModeAuto,
		BaseDir:  wd,
	})
}

// finish prints the collected diagnostics and maps a failure that has
// already been reported to errReported.
func finish(cmd *cobra.Command, bag *diag.Bag, err error) error {
	perr := printDiagnostics(cmd, bag)
	if err != nil {
		if bag != nil && bag.HasErrors() {
			return errReported
		}
		return err
	}
	return perr
}

// reportTimings prints a per-file timing table, or appends it to bag when
// diagnostics are JSON so the output stays machine readable.
func reportTimings(cmd *cobra.Command, bag *diag.Bag, kind, path string, report observ.Report) {
	s := sess()
	if !s.timings {
		return
	}
	if s.diagFormat == diagfmt.FormatJSON {
		driver.AppendTimings(bag, kind, path, report)
		return
	}
	_, _ = cmd.ErrOrStderr().Write([]byte(report.String()))
}
