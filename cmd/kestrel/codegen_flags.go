package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kestrel/internal/driver"
)

// addCodegenFlags registers the flags shared by compile and build.
func addCodegenFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-registers", 0, "limit the expression register pool (0 = all 17)")
	cmd.Flags().Bool("annotate", false, "emit source line comments into the assembly")
	cmd.Flags().Bool("no-cache", false, "bypass the compile cache")
}

// compileOptions reads the codegen flags. useCache is the caller's default
// (the manifest's for build); --no-cache and KESTREL_NO_CACHE win over it.
func compileOptions(cmd *cobra.Command, base driver.Options, useCache bool) (driver.Options, error) {
	opts := base
	if cmd.Flags().Changed("max-registers") {
		n, err := cmd.Flags().GetInt("max-registers")
		if err != nil {
			return opts, err
		}
		opts.MaxRegisters = n
	}
	if opts.MaxRegisters < 0 {
		return opts, fmt.Errorf("--max-registers must not be negative")
	}
	if cmd.Flags().Changed("annotate") {
		annotate, err := cmd.Flags().GetBool("annotate")
		if err != nil {
			return opts, err
		}
		opts.Annotate = annotate
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return opts, err
	}
	if useCache && !noCache {
		cache, err := sess().env.OpenCache()
		if err != nil {
			return opts, fmt.Errorf("open cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, nil
}
