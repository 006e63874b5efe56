// Package trace records where the compiler spends its time.
//
// Spans mark driver steps, analysis passes and code generation phases.
// A Tracer travels through the pipeline in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "sema")
//	defer span.End("")
//
// Tracers either stream events as they happen (text or NDJSON) or keep the
// most recent ones in a ring that is dumped when a compilation fails.
// Verbosity is picked with a Level: off, error, phase, detail or debug.
package trace
