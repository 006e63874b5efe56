package trace

import (
	"fmt"
	"slices"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // ring only, dumped when the command fails
	LevelPhase               // driver phases and sema/codegen passes
	LevelDetail              // plus per-file spans and cache hits
	LevelDebug               // plus one span per generated function
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag or KESTREL_TRACE_LEVEL value to a Level.
// The empty string means off.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return LevelOff, nil
	}
	if i := slices.Index(levelNames[:], name); i >= 0 {
		return Level(i), nil
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at this level. The error
// level records everything into the ring.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeFile
	case LevelError, LevelDebug:
		return true
	}
	return false
}
