package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// Phase names reported by CompileFile and Check.
const (
	PhaseLoad     = "load"
	PhaseAnalyze  = "analyze"
	PhaseGenerate = "generate"
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Path    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events emitted during CompileFile.
type PhaseObserver func(PhaseEvent)
