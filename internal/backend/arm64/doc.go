// Package arm64 lowers an analysed tree to AArch64 assembly for GNU as.
//
// Values live in w registers handed out by a RegisterFile; locals and
// parameters live in 4-byte frame slots addressed from sp, globals in the
// data section. Functions follow the platform convention for the first
// eight arguments (x0-x7) and the result (w0). Further arguments are
// passed on the stack above a caller spill area whose size is recorded on
// the callee's symbol.
//
// Runtime traps (division by zero, falling off the end of a typed
// function) print a message through printf and call exit(1).
package arm64
