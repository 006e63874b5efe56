package layout

import (
	"fortio.org/safecast"

	"kestrel/internal/symbols"
)

// Frame lays out the locals and parameters of one function. Offsets grow
// from zero in declaration order, one slot each, and are relative to the
// stack pointer as it is at the moment of access: whenever code moves sp
// inside the body, Push/Pop re-base every member once.
type Frame struct {
	Name string

	target  Target
	arena   *symbols.Symbols
	members []symbols.SymbolID
	index   map[symbols.SymbolID]struct{}
	depth   int32
}

func NewFrame(target Target, arena *symbols.Symbols, name string) *Frame {
	return &Frame{
		Name:   name,
		target: target,
		arena:  arena,
		index:  make(map[symbols.SymbolID]struct{}, 8),
	}
}

// Target returns the target the frame was created for.
func (f *Frame) Target() Target { return f.target }

// Add assigns the next slot to id and returns its offset.
func (f *Frame) Add(id symbols.SymbolID) (int32, error) {
	if _, dup := f.index[id]; dup {
		return 0, &Error{Kind: ErrDuplicateSlot, Frame: f.Name, Sym: id}
	}
	sym := f.arena.Get(id)
	if sym == nil {
		return 0, &Error{Frame: f.Name, Sym: id}
	}
	count, err := safecast.Conv[int32](len(f.members))
	if err != nil {
		return 0, &Error{Frame: f.Name, Sym: id, Err: err}
	}
	off := count*f.target.SlotSize + f.depth
	if err := sym.SetOffset(off); err != nil {
		return 0, &Error{Frame: f.Name, Sym: id, Err: err}
	}
	f.members = append(f.members, id)
	f.index[id] = struct{}{}
	return off, nil
}

// Len reports the number of slots.
func (f *Frame) Len() int { return len(f.members) }

// Members returns the symbols in slot order.
func (f *Frame) Members() []symbols.SymbolID { return f.members }

// Size is the number of bytes reserved at entry: every slot, the save
// area and extra bytes (saved callee registers), rounded to the stack
// alignment.
func (f *Frame) Size(extra int32) (int32, error) {
	size := f.target.Align(int32(len(f.members))*f.target.SlotSize + f.target.SaveArea + extra)
	if size > f.target.MaxFrame {
		return size, &Error{Kind: ErrFrameTooLarge, Frame: f.Name, Size: size, Limit: f.target.MaxFrame}
	}
	return size, nil
}

// Shift adds delta to the offset of every member exactly once.
func (f *Frame) Shift(delta int32) {
	if delta == 0 {
		return
	}
	seen := make(map[symbols.SymbolID]struct{}, len(f.members))
	for _, id := range f.members {
		if _, done := seen[id]; done {
			continue
		}
		seen[id] = struct{}{}
		if sym := f.arena.Get(id); sym != nil {
			sym.Shift(delta)
		}
	}
}

// Push records that sp moved down by bytes; members move up by the same
// amount relative to the new sp.
func (f *Frame) Push(bytes int32) {
	f.depth += bytes
	f.Shift(bytes)
}

// Pop undoes a Push of the same size.
func (f *Frame) Pop(bytes int32) error {
	if bytes > f.depth {
		return &Error{Kind: ErrUnbalanced, Frame: f.Name, Size: f.depth - bytes}
	}
	f.depth -= bytes
	f.Shift(-bytes)
	return nil
}

// Depth reports how far sp currently is below its position after the
// prologue.
func (f *Frame) Depth() int32 { return f.depth }
