package diagfmt

import (
	"path/filepath"
	"strconv"
	"strings"
)

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return path
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil {
			return path
		}
		// auto: снаружи base оставляем путь как есть
		if mode == PathModeAuto && strings.HasPrefix(rel, "..") {
			return path
		}
		return filepath.ToSlash(rel)
	}
	return path
}

// location renders "path:line", "path" or "line N".
func location(path string, line uint32) string {
	switch {
	case path == "" && line == 0:
		return "<unknown>"
	case path == "":
		return "line " + strconv.FormatUint(uint64(line), 10)
	case line == 0:
		return path
	}
	return path + ":" + strconv.FormatUint(uint64(line), 10)
}
