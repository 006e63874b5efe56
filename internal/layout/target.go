package layout

// Target describes the stack discipline of the code generator's ABI.
//
// Only aarch64-linux-gnu is implemented.
type Target struct {
	Triple string // e.g. "aarch64-linux-gnu"

	SlotSize   int32 // bytes per local or parameter slot
	SaveArea   int32 // frame pointer + link register
	RegSize    int32 // bytes per spilled register
	StackAlign int32 // sp must stay a multiple of this
	ArgRegs    int   // integer arguments passed in registers
	StackArg   int32 // bytes per stack-passed argument
	MaxFrame   int32 // largest frame addressable with immediate offsets
}

func AArch64LinuxGNU() Target {
	return Target{
		Triple:     "aarch64-linux-gnu",
		SlotSize:   4,
		SaveArea:   16,
		RegSize:    8,
		StackAlign: 16,
		ArgRegs:    8,
		StackArg:   8,
		MaxFrame:   4080,
	}
}

// Align rounds n up to the target's stack alignment.
func (t Target) Align(n int32) int32 {
	return AlignUp(n, t.StackAlign)
}

// SpillBytes is the aligned size of an area holding regs registers.
func (t Target) SpillBytes(regs int) int32 {
	return t.Align(int32(regs) * t.RegSize)
}

// StackArgBytes is the aligned size of the outgoing area for a call with
// argc arguments.
func (t Target) StackArgBytes(argc int) int32 {
	if argc <= t.ArgRegs {
		return 0
	}
	return t.Align(int32(argc-t.ArgRegs) * t.StackArg)
}

// AlignUp rounds n up to a multiple of align; align must be a power of two.
func AlignUp(n, align int32) int32 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
