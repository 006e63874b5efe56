package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kestrel/internal/buildpipeline"
	"kestrel/internal/diag"
	"kestrel/internal/driver"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <tree>",
	Short: "Compile one syntax tree to AArch64 assembly",
	Long: `Compile analyses a .json or .msgpack syntax tree and writes GNU as
assembly next to it (or to -o; "-o -" writes to stdout).`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "output file (- for stdout)")
	addCodegenFlags(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	opts, err := compileOptions(cmd, driver.Options{}, true)
	if err != nil {
		return err
	}
	bag := newBag()
	opts.Reporter = diag.BagReporter{Bag: bag}

	res, err := driver.CompileFile(cmd.Context(), path, opts)
	if err != nil {
		return finish(cmd, bag, err)
	}
	reportTimings(cmd, bag, "compile", path, res.Timings)

	if output == "" {
		output = buildpipeline.OutputPath(filepath.Dir(path), path)
	}
	if output == "-" {
		if _, err := fmt.Fprint(cmd.OutOrStdout(), res.Assembly); err != nil {
			return err
		}
		return finish(cmd, bag, nil)
	}
	if err := os.WriteFile(output, []byte(res.Assembly), 0o644); err != nil {
		werr := diag.Errorf(diag.IOWrite, 0, "write %s: %v", output, err)
		diag.ReportError(opts.Reporter, werr, diag.IOWrite, path)
		return finish(cmd, bag, werr)
	}
	if !sess().quiet {
		suffix := ""
		if res.Cached {
			suffix = " (cached)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "compiled %s -> %s%s\n", path, output, suffix)
	}
	return finish(cmd, bag, nil)
}
