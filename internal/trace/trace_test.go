package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStreamTracerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := Start(ctx, ScopePass, "sema")
	_, fn := Start(ctx, ScopeFunction, "main")
	fn.End("")
	pass.End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ sema") || !strings.Contains(out, "← sema") {
		t.Fatalf("missing pass events:\n%s", out)
	}
	if strings.Contains(out, "main") {
		t.Fatalf("function scope must be filtered at phase level:\n%s", out)
	}
}

func TestRingKeepsNewest(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Begin(ring, ScopePass, name, 0)
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
}

func TestNDJSONParentLink(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)
	ctx, outer := Start(ctx, ScopeDriver, "compile")
	Point(ctx, ScopePass, "cache", "hit")
	outer.End("")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 events, got %d", len(lines))
	}
	if !strings.Contains(lines[1], `"kind":"point"`) || !strings.Contains(lines[1], `"parent_id"`) {
		t.Fatalf("point event lacks parent: %s", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("got %v %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error")
	}
}
