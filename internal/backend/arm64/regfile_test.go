package arm64

import (
	"errors"
	"testing"
)

func TestAllocateFirstFitAndFree(t *testing.T) {
	rf := NewRegisterFile()
	a, _ := rf.Allocate()
	b, _ := rf.Allocate()
	if a != 9 || b != 10 {
		t.Fatalf("got %s %s", a, b)
	}
	if err := rf.Free(a); err != nil {
		t.Fatalf("free: %v", err)
	}
	c, _ := rf.Allocate()
	if c != a {
		t.Fatalf("first fit should reuse %s, got %s", a, c)
	}
	if err := rf.Free(b); err != nil {
		t.Fatalf("free: %v", err)
	}
	if err := rf.Free(b); err == nil {
		t.Fatalf("double free must fail")
	}
}

func TestAllocateNeverReturnsLiveRegister(t *testing.T) {
	rf := NewRegisterFile()
	seen := map[Reg]bool{}
	for range rf.Size() {
		r, err := rf.Allocate()
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if seen[r] {
			t.Fatalf("%s handed out twice", r)
		}
		seen[r] = true
	}
	if _, err := rf.Allocate(); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected exhaustion, got %v", err)
	}
}

func TestSnapshotsByPartition(t *testing.T) {
	rf := NewRegisterFile()
	var regs []Reg
	for range rf.CallerSavedSize() + 2 {
		r, _ := rf.Allocate()
		regs = append(regs, r)
	}
	if got := rf.SnapshotCallerSaved(); len(got) != rf.CallerSavedSize() {
		t.Fatalf("caller-saved snapshot %v", got)
	}
	callee := rf.SnapshotCalleeSaved()
	if len(callee) != 2 || callee[0] != 19 || callee[1] != 20 {
		t.Fatalf("callee-saved snapshot %v", callee)
	}
	for _, r := range regs {
		_ = rf.Free(r)
	}
	if touched := rf.TouchedCalleeSaved(); len(touched) != 2 {
		t.Fatalf("touched %v", touched)
	}
	rf.ResetTouched()
	if touched := rf.TouchedCalleeSaved(); len(touched) != 0 {
		t.Fatalf("touched after reset %v", touched)
	}
}

func TestReserveShrinksPool(t *testing.T) {
	rf := NewRegisterFile()
	if err := rf.Reserve(rf.Size() - 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if rf.Available() != 2 {
		t.Fatalf("available = %d", rf.Available())
	}
	_, _ = rf.Allocate()
	_, _ = rf.Allocate()
	if _, err := rf.Allocate(); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected exhaustion")
	}
}
