package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "tree.json")
	if err := tm.Measure("analyze", func() error { return errors.New("boom") }); err == nil {
		t.Fatalf("Measure must return fn error")
	}

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	p, ok := report.Phase("analyze")
	if !ok || p.Note != "failed" {
		t.Fatalf("analyze phase = %+v (found %v)", p, ok)
	}
	if report.TotalMS < 0 {
		t.Fatalf("negative total %f", report.TotalMS)
	}
	summary := tm.Summary()
	for _, want := range []string{"timings:", "load", "// tree.json", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	idx := tm.Begin("x")
	tm.End(idx, "")
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Fatalf("nil timer reported phases: %+v", got)
	}
}
