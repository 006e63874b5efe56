package buildpipeline

import (
	"path/filepath"
	"strings"
)

// DisplayName is the name events carry for path: relative to baseDir when
// path lies inside it, slash-separated.
func DisplayName(path, baseDir string) string {
	if path == "" {
		return ""
	}
	clean := filepath.Clean(path)
	base := strings.TrimSpace(baseDir)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
		if abs, err := filepath.Abs(clean); err == nil {
			clean = abs
		}
		if rel, err := filepath.Rel(base, clean); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			clean = rel
		}
	}
	return filepath.ToSlash(clean)
}

// DisplayNames maps DisplayName over files, keeping order.
func DisplayNames(files []string, baseDir string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = DisplayName(f, baseDir)
	}
	return out
}

// OutputPath is <outDir>/<input base name without extension>.s.
func OutputPath(outDir, input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+".s")
}
