package layout

import (
	"errors"
	"testing"

	"kestrel/internal/symbols"
)

func newArena(t *testing.T, names ...string) (*symbols.Symbols, []symbols.SymbolID) {
	t.Helper()
	arena := symbols.NewSymbols(0)
	ids := make([]symbols.SymbolID, len(names))
	for i, n := range names {
		ids[i] = arena.New(symbols.Symbol{Name: n, Kind: symbols.SymbolLocal})
	}
	return arena, ids
}

func TestFrameOffsetsAndSize(t *testing.T) {
	target := AArch64LinuxGNU()
	arena, ids := newArena(t, "a", "b", "c")
	f := NewFrame(target, arena, "f")
	for i, id := range ids {
		off, err := f.Add(id)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if off != int32(i)*4 {
			t.Fatalf("slot %d at %d", i, off)
		}
	}
	size, err := f.Size(0)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	// 3*4 + 16 = 28 -> 32
	if size != 32 {
		t.Fatalf("size = %d, want 32", size)
	}
	if size < int32(f.Len())*target.SlotSize+target.SaveArea || size%target.StackAlign != 0 {
		t.Fatalf("size %d violates the frame bound", size)
	}
	if size, _ := f.Size(16); size != 48 {
		t.Fatalf("size with saved registers = %d, want 48", size)
	}
}

func TestFrameRejectsDuplicates(t *testing.T) {
	arena, ids := newArena(t, "a")
	f := NewFrame(AArch64LinuxGNU(), arena, "f")
	if _, err := f.Add(ids[0]); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := f.Add(ids[0])
	var le *Error
	if !errors.As(err, &le) || le.Kind != ErrDuplicateSlot {
		t.Fatalf("expected duplicate slot error, got %v", err)
	}
}

func TestPushPopRebasesOnce(t *testing.T) {
	arena, ids := newArena(t, "a", "b")
	f := NewFrame(AArch64LinuxGNU(), arena, "f")
	for _, id := range ids {
		if _, err := f.Add(id); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	// a symbol listed twice must still move once
	f.members = append(f.members, ids[0])

	f.Push(32)
	if off, _ := arena.Get(ids[0]).Offset(); off != 32 {
		t.Fatalf("a after push = %d", off)
	}
	if off, _ := arena.Get(ids[1]).Offset(); off != 36 {
		t.Fatalf("b after push = %d", off)
	}
	if f.Depth() != 32 {
		t.Fatalf("depth = %d", f.Depth())
	}
	if err := f.Pop(32); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if off, _ := arena.Get(ids[1]).Offset(); off != 4 {
		t.Fatalf("b after pop = %d", off)
	}
	if err := f.Pop(16); err == nil {
		t.Fatalf("expected unbalanced pop to fail")
	}
}

func TestFrameTooLarge(t *testing.T) {
	target := AArch64LinuxGNU()
	target.MaxFrame = 32
	arena, ids := newArena(t, "a", "b", "c", "d", "e")
	f := NewFrame(target, arena, "big")
	for _, id := range ids {
		if _, err := f.Add(id); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	_, err := f.Size(0)
	var le *Error
	if !errors.As(err, &le) || le.Kind != ErrFrameTooLarge {
		t.Fatalf("expected frame too large, got %v", err)
	}
}

func TestTargetHelpers(t *testing.T) {
	target := AArch64LinuxGNU()
	if got := target.StackArgBytes(9); got != 16 {
		t.Fatalf("9 args -> %d", got)
	}
	if got := target.StackArgBytes(8); got != 0 {
		t.Fatalf("8 args -> %d", got)
	}
	if got := target.SpillBytes(7); got != 64 {
		t.Fatalf("7 regs -> %d", got)
	}
	if AlignUp(17, 16) != 32 || AlignUp(16, 16) != 16 {
		t.Fatalf("AlignUp broken")
	}
}
