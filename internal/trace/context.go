package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// SpanContext identifies the active span so children can link to it.
type SpanContext struct {
	SpanID uint64
}

// WithTracer attaches t to ctx; a nil t is stored as Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer attached to ctx, or Nop. Analysis and
// codegen accept a nil ctx from tests.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithSpanContext records sc as the parent for spans started under ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		return nil
	}
	return context.WithValue(ctx, spanKey{}, sc)
}

// CurrentSpan returns the active span context; zero when none is open.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(SpanContext); ok {
			return sc
		}
	}
	return SpanContext{}
}
