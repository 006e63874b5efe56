package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// Symbols stores declared symbols in a compact arena. Tree nodes keep the
// SymbolID only, so every pass observes the same record.
type Symbols struct {
	data []Symbol
}

// NewSymbols creates a symbol arena with optional capacity hint.
func NewSymbols(capacity uint32) *Symbols {
	if capacity == 0 {
		capacity = 64
	}
	return &Symbols{
		data: make([]Symbol, 1, capacity+1), // index 0 reserved for NoSymbolID
	}
}

// New allocates a symbol in the arena and returns its ID.
func (s *Symbols) New(sym Symbol) SymbolID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("symbols arena overflow: %w", err))
	}
	s.data = append(s.data, sym)
	return SymbolID(value)
}

// Get returns a symbol pointer or nil for invalid ID. The pointer stays
// valid until the next New call.
func (s *Symbols) Get(id SymbolID) *Symbol {
	if s == nil || !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports number of stored symbols excluding sentinel.
func (s *Symbols) Len() int { return len(s.data) - 1 }

// Each visits every symbol in allocation order.
func (s *Symbols) Each(fn func(SymbolID, *Symbol)) {
	for i := 1; i < len(s.data); i++ {
		fn(SymbolID(i), &s.data[i])
	}
}
