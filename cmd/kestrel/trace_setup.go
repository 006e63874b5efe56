package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kestrel/internal/driver"
	"kestrel/internal/trace"
)

// setupTracing inspects trace-related flags (falling back to the
// environment) and attaches a tracer to the command context. Tracing is
// on only when an output is named.
func setupTracing(cmd *cobra.Command, e driver.Env) (func() error, error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if traceOutput == "" {
		traceOutput = e.Trace
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if levelStr == "" {
		levelStr = e.TraceLevel
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff || traceOutput == "" {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() error { return nil }, nil
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   256,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "kestrel "+cmd.Name())
	cmd.SetContext(ctx)

	return func() error {
		span.End("")
		// уровень error пишет только кольцо, выводим его при неудаче
		if ring := trace.Ring(tracer); ring != nil && level == trace.LevelError && sess().failed {
			if err := ring.Dump(cmd.ErrOrStderr(), format); err != nil {
				return err
			}
		}
		if err := tracer.Flush(); err != nil {
			return fmt.Errorf("trace: flush: %w", err)
		}
		if err := tracer.Close(); err != nil {
			return fmt.Errorf("trace: close: %w", err)
		}
		return nil
	}, nil
}
