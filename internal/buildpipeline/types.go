package buildpipeline

import (
	"time"

	"kestrel/internal/driver"
)

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageLoad reads and decodes the tree (or finds it in the cache).
	StageLoad Stage = "load"
	// StageAnalyze runs the semantic passes.
	StageAnalyze Stage = "analyze"
	// StageGenerate emits assembly.
	StageGenerate Stage = "generate"
	// StageWrite stores the .s file.
	StageWrite Stage = "write"
)

// Stages lists the stages in pipeline order.
var Stages = [...]Stage{StageLoad, StageAnalyze, StageGenerate, StageWrite}

// stageOf maps a driver phase to its stage.
func stageOf(phase string) Stage {
	switch phase {
	case driver.PhaseLoad:
		return StageLoad
	case driver.PhaseAnalyze:
		return StageAnalyze
	case driver.PhaseGenerate:
		return StageGenerate
	}
	return Stage(phase)
}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusCached marks a file whose assembly came from the disk cache.
	StatusCached Status = "cached"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Build calls OnEvent from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Add accumulates dur into stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
