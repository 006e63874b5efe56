package symbols

import "kestrel/internal/types"

// PreludeEntry describes a built-in runtime operation injected into the
// outermost frame before analysis.
type PreludeEntry struct {
	Name      string
	Signature types.Type
	Result    types.Type
	Label     string
}

// builtinPreludeEntries returns the runtime operations visible to every program.
func builtinPreludeEntries() []PreludeEntry {
	return []PreludeEntry{
		{Name: "exit", Signature: types.Signature(types.Int), Result: types.Void, Label: "exit"},
		{Name: "printf", Signature: types.VariadicString, Result: types.Void, Label: "printf"},
	}
}

// mergePrelude combines default builtins with user provided entries.
func mergePrelude(custom []PreludeEntry) []PreludeEntry {
	defaults := builtinPreludeEntries()
	if len(custom) == 0 {
		return defaults
	}
	result := make([]PreludeEntry, 0, len(defaults)+len(custom))
	result = append(result, defaults...)
	result = append(result, custom...)
	return result
}
