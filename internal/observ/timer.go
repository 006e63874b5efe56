package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records the duration of one pipeline step (load, analyze, generate, ...).
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the phases of a single compilation. Not safe for concurrent
// use: the build pipeline gives every file its own Timer.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Measure runs fn as a phase named name; the error text becomes the note.
func (t *Timer) Measure(name string, fn func() error) error {
	idx := t.Begin(name)
	err := fn()
	note := ""
	if err != nil {
		note = "failed"
	}
	t.End(idx, note)
	return err
}

// Summary returns a human-readable table of all tracked phases.
func (t *Timer) Summary() string {
	return t.Report().String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" msgpack:"duration_ms"`
	Note       string  `json:"note,omitempty" msgpack:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms" msgpack:"total_ms"`
	Phases  []PhaseReport `json:"phases" msgpack:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Phase returns the report entry named name.
func (r Report) Phase(name string) (PhaseReport, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseReport{}, false
}

func (r Report) String() string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", r.TotalMS)
	return b.String()
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
