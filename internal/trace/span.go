package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// Span tracks one timed operation.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin starts a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}
	s := &Span{
		tracer:   t,
		id:       globalSpans.Add(1),
		parentID: parent,
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Seq:      globalSeq.Add(1),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// Start begins a span with the context's tracer and current span as parent
// and returns a context carrying the new span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx).SpanID)
	if s.id == 0 || ctx == nil {
		return ctx, s
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.id}), s
}

// End emits the span end and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      globalSeq.Add(1),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  dur,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra attaches a key/value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID (0 for a disabled span).
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      globalSeq.Add(1),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: CurrentSpan(ctx).SpanID,
		Name:     name,
		Detail:   detail,
	})
}
