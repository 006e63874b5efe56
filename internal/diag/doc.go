// Package diag defines the diagnostic model shared by the analyzer, the code
// generator and the driver.
//
// # Failure model
//
// Compilation is fail-fast: every analysis pass and every code generation
// step returns the first problem it finds as a *diag.Error and the pipeline
// stops. There is no accumulation of errors within one compilation.
//
// # Data model
//
//   - Severity – Info, Warning, Error.
//   - Code – compact numeric identifier with a stable string form
//     (SEM3001, GEN4100, IO5001...).
//   - Message – short, human oriented text.
//   - Line – source line of the offending node, copied verbatim from the tree.
//   - Path – input file, filled in by the driver.
//   - Notes – optional secondary lines ("previously declared here").
//
// # Consumers
//
//   - internal/diagfmt renders diagnostics (pretty / short / json).
//   - internal/buildpipeline collects per-file outcomes into a Bag.
//
// Runtime traps (division by zero, falling off a typed function) are not
// diagnostics: they are code emitted into the generated program.
package diag
