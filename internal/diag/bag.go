package diag

import (
	"sort"
)

// Bag collects diagnostics across files of a batch build. A single
// compilation stops at its first error; the bag only aggregates per-file
// outcomes.
type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 100
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 16)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the internal slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends another bag, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by path, line, severity (desc), code for deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
