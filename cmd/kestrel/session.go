package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kestrel/internal/diagfmt"
	"kestrel/internal/driver"
)

// session is the state shared by every subcommand of one invocation.
type session struct {
	env            driver.Env
	color          bool
	quiet          bool
	timings        bool
	diagFormat     diagfmt.Format
	maxDiagnostics int
	failed         bool
	cleanups       []func() error
}

var current *session

func setupSession(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	s := &session{env: driver.LoadEnv()}

	colorValue, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if colorValue == "" {
		colorValue = s.env.Color
	}
	mode, err := diagfmt.ParseColorMode(colorValue)
	if err != nil {
		return err
	}
	stderr, _ := cmd.ErrOrStderr().(*os.File)
	s.color = mode.Enabled(stderr)
	color.NoColor = !s.color

	formatValue, err := flags.GetString("diag-format")
	if err != nil {
		return fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	if s.diagFormat, err = diagfmt.ParseFormat(formatValue); err != nil {
		return err
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	current = s

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	s.cleanups = append(s.cleanups, stopProfiling)

	closeTracing, err := setupTracing(cmd, s.env)
	if err != nil {
		return err
	}
	s.cleanups = append(s.cleanups, closeTracing)
	return nil
}

// closeSession runs the cleanups in reverse order; safe to call twice.
func closeSession() error {
	if current == nil {
		return nil
	}
	var errs []error
	for i := len(current.cleanups) - 1; i >= 0; i-- {
		errs = append(errs, current.cleanups[i]())
	}
	current.cleanups = nil
	return errors.Join(errs...)
}

// sess returns the active session, or defaults when a command runs
// without the root pre-run (tests).
func sess() *session {
	if current == nil {
		current = &session{env: driver.LoadEnv(), maxDiagnostics: 100}
	}
	return current
}
