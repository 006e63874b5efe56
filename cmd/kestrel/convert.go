package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/driver"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-encode a syntax tree between .json and .msgpack",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	bag := newBag()
	reporter := diag.BagReporter{Bag: bag}

	format, err := ast.FormatForPath(out)
	if err != nil {
		return err
	}
	tree, err := driver.LoadTree(in)
	if err != nil {
		diag.ReportError(reporter, err, diag.IOLoadFailed, in)
		return finish(cmd, bag, err)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	err = ast.Encode(f, tree, format)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Join(fmt.Errorf("encode %s: %w", out, err), os.Remove(out))
	}
	if !sess().quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "converted %s -> %s (%s)\n", in, out, format)
	}
	return nil
}
