// Package main implements the kestrel CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kestrel/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "AArch64 back end for analysed syntax trees",
	Long: `kestrel checks syntax trees produced by an external parser and
lowers them to AArch64 assembly for the GNU toolchain.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  setupSession,
	PersistentPostRunE: func(*cobra.Command, []string) error { return closeSession() },
}

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("compilation failed")

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Current().Version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "", "colorize output (auto|on|off); default from KESTREL_COLOR")
	flags.String("diag-format", "pretty", "diagnostics format (pretty|short|json)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("trace", "", "write trace events to file (- for stderr); default from KESTREL_TRACE")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug); default from KESTREL_TRACE_LEVEL")
	flags.String("trace-format", "text", "trace format (text|ndjson)")
	flags.String("cpuprofile", "", "write CPU profile to file")
	flags.String("memprofile", "", "write heap profile to file")
	flags.String("runtime-trace", "", "write Go runtime trace to file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	// PersistentPostRun не вызывается при ошибке
	if err != nil && current != nil {
		current.failed = true
	}
	if cerr := closeSession(); err == nil {
		err = cerr
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
