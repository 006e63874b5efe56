package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kestrel/internal/prof"
)

// setupProfiling inspects persistent profiling flags and enables the
// corresponding profilers. The returned cleanup writes the heap profile.
func setupProfiling(cmd *cobra.Command) (func() error, error) {
	flags := cmd.Root().PersistentFlags()

	var cfg prof.Config
	var err error
	if cfg.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return nil, fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	if cfg.Mem, err = flags.GetString("memprofile"); err != nil {
		return nil, fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	if cfg.Runtime, err = flags.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	session, err := prof.Start(cfg)
	if err != nil {
		return nil, err
	}
	return session.Stop, nil
}
