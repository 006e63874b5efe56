package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Tracer receives trace events. Implementations must be goroutine-safe:
// a build compiles files concurrently.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Config holds tracer configuration.
type Config struct {
	Level  Level
	Format Format
	// Output receives streamed events; when nil OutputPath is opened
	// ("-" or "" means stderr).
	Output     io.Writer
	OutputPath string
	// RingSize > 0 also keeps the last RingSize events for Dump.
	RingSize int
}

// New builds a tracer for cfg. LevelError only keeps a ring.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Level == LevelError {
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	}
	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Format == FormatText && strings.HasSuffix(cfg.OutputPath, ".ndjson") {
		cfg.Format = FormatNDJSON
	}
	stream := NewStreamTracer(w, cfg.Level, cfg.Format)
	if cfg.RingSize <= 0 {
		return stream, nil
	}
	return NewMultiTracer(cfg.Level, stream, NewRingTracer(cfg.RingSize, cfg.Level)), nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything.
var Nop Tracer = nopTracer{}

// StreamTracer writes events as they happen.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	data := FormatEvent(ev, t.format)
	t.mu.Lock()
	defer t.mu.Unlock()
	// trace output never fails a compilation
	_, _ = t.w.Write(data)
}

func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.w == os.Stderr || t.w == os.Stdout {
		return nil
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

// RingTracer keeps the last N events in memory.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	head   int
	full   bool
	level  Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events[t.head] = *ev
	t.head = (t.head + 1) % len(t.events)
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns the stored events oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]Event(nil), t.events[:t.head]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.head:]...)
	return append(out, t.events[:t.head]...)
}

// Dump writes the stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

// MultiTracer fans events out to several tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

func (t *MultiTracer) Flush() error {
	var first error
	for _, tr := range t.tracers {
		if err := tr.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *MultiTracer) Close() error {
	var first error
	for _, tr := range t.tracers {
		if err := tr.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }

// Ring returns the first ring tracer inside t, if any.
func Ring(t Tracer) *RingTracer {
	switch v := t.(type) {
	case *RingTracer:
		return v
	case *MultiTracer:
		for _, inner := range v.tracers {
			if r := Ring(inner); r != nil {
				return r
			}
		}
	}
	return nil
}
