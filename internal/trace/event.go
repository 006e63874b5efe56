package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver   Scope = iota + 1 // command and build level
	ScopePass                      // load, analysis passes, generation phases
	ScopeFile                      // one input tree inside a build
	ScopeFunction                  // one function body
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeFile:
		return "file"
	case ScopeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // e.g. "sema.resolve", "file:prog.json"
	Detail   string
	Elapsed  time.Duration // span end only
	Extra    map[string]string
}
