package arm64

import (
	"errors"
	"fmt"
	"slices"
)

// Reg is a hardware register number (x9 is Reg(9)).
type Reg uint8

// NoReg marks "no value", e.g. the result of a void call.
const NoReg Reg = 0xff

func (r Reg) IsValid() bool { return r != NoReg }

// X is the 64-bit name.
func (r Reg) X() string { return fmt.Sprintf("x%d", r) }

// W is the 32-bit name.
func (r Reg) W() string { return fmt.Sprintf("w%d", r) }

func (r Reg) String() string { return r.X() }

type slotState uint8

const (
	slotFree slotState = iota
	slotAllocated
	slotUnavailable
)

var (
	callerSavedPool = []Reg{9, 10, 11, 12, 13, 14, 15}
	calleeSavedPool = []Reg{19, 20, 21, 22, 23, 24, 25, 26, 27, 28}
)

// ErrPoolExhausted is returned by Allocate when every slot is taken.
var ErrPoolExhausted = errors.New("register pool exhausted")

// RegisterFile is a first-fit allocator over the expression registers.
// The caller-saved partition comes first, so callee-saved registers are
// only used under pressure. One file serves a whole generation run.
type RegisterFile struct {
	regs    []Reg
	state   []slotState
	split   int // index of the first callee-saved slot
	touched []bool
}

func NewRegisterFile() *RegisterFile {
	regs := make([]Reg, 0, len(callerSavedPool)+len(calleeSavedPool))
	regs = append(regs, callerSavedPool...)
	regs = append(regs, calleeSavedPool...)
	return &RegisterFile{
		regs:    regs,
		state:   make([]slotState, len(regs)),
		split:   len(callerSavedPool),
		touched: make([]bool, len(regs)),
	}
}

// Size is the number of registers in the pool, unavailable ones included.
func (rf *RegisterFile) Size() int { return len(rf.regs) }

// CallerSavedSize is the number of slots in the caller-saved partition.
func (rf *RegisterFile) CallerSavedSize() int { return rf.split }

func (rf *RegisterFile) index(r Reg) int {
	for i, reg := range rf.regs {
		if reg == r {
			return i
		}
	}
	return -1
}

// Allocate returns the first free register.
func (rf *RegisterFile) Allocate() (Reg, error) {
	for i, st := range rf.state {
		if st == slotFree {
			rf.state[i] = slotAllocated
			rf.touched[i] = true
			return rf.regs[i], nil
		}
	}
	return NoReg, ErrPoolExhausted
}

// Free releases r. Freeing a register that is not allocated is an error.
func (rf *RegisterFile) Free(r Reg) error {
	i := rf.index(r)
	if i < 0 {
		return fmt.Errorf("free of %s: not an expression register", r)
	}
	if rf.state[i] != slotAllocated {
		return fmt.Errorf("double free of %s", r)
	}
	rf.state[i] = slotFree
	return nil
}

// Reserve makes the last n slots unavailable. It only touches free slots.
func (rf *RegisterFile) Reserve(n int) error {
	if n < 0 || n >= len(rf.regs) {
		return fmt.Errorf("cannot reserve %d of %d registers", n, len(rf.regs))
	}
	for i := len(rf.regs) - n; i < len(rf.regs); i++ {
		if rf.state[i] == slotAllocated {
			return fmt.Errorf("cannot reserve %s: in use", rf.regs[i])
		}
		rf.state[i] = slotUnavailable
	}
	return nil
}

// Available counts free slots.
func (rf *RegisterFile) Available() int {
	n := 0
	for _, st := range rf.state {
		if st == slotFree {
			n++
		}
	}
	return n
}

func (rf *RegisterFile) allocatedIn(lo, hi int) []Reg {
	var out []Reg
	for i := lo; i < hi; i++ {
		if rf.state[i] == slotAllocated {
			out = append(out, rf.regs[i])
		}
	}
	return out
}

// SnapshotCallerSaved lists allocated caller-saved registers.
func (rf *RegisterFile) SnapshotCallerSaved() []Reg { return rf.allocatedIn(0, rf.split) }

// SnapshotCalleeSaved lists allocated callee-saved registers.
func (rf *RegisterFile) SnapshotCalleeSaved() []Reg { return rf.allocatedIn(rf.split, len(rf.regs)) }

// Allocated lists every allocated register in pool order.
func (rf *RegisterFile) Allocated() []Reg { return rf.allocatedIn(0, len(rf.regs)) }

// ResetTouched forgets which registers were handed out so far.
func (rf *RegisterFile) ResetTouched() {
	clear(rf.touched)
}

// TouchedCalleeSaved lists callee-saved registers allocated since the last
// ResetTouched.
func (rf *RegisterFile) TouchedCalleeSaved() []Reg {
	var out []Reg
	for i := rf.split; i < len(rf.regs); i++ {
		if rf.touched[i] {
			out = append(out, rf.regs[i])
		}
	}
	return out
}

// sameRegs reports whether two allocation snapshots match.
func sameRegs(a, b []Reg) bool { return slices.Equal(a, b) }
