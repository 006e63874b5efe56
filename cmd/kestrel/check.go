package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <tree>",
	Short: "Run semantic analysis without generating code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("dump-ast", false, "print the analysed tree with types and symbols")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	dump, err := cmd.Flags().GetBool("dump-ast")
	if err != nil {
		return err
	}
	bag := newBag()
	res, err := driver.Check(cmd.Context(), path, driver.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		return finish(cmd, bag, err)
	}
	reportTimings(cmd, bag, "check", path, res.Timings)
	if dump {
		if err := ast.Dump(cmd.OutOrStdout(), res.Tree, res.Sema.Name); err != nil {
			return err
		}
	} else if !sess().quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d functions, %d globals)\n", path, len(res.Sema.Functions), len(res.Sema.Globals))
	}
	return finish(cmd, bag, nil)
}
