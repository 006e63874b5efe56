package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode selects how `kestrel build` reports progress.
type uiMode string

const (
	uiModeAuto uiMode = "auto" // progress view when stdout is a terminal
	uiModeOn   uiMode = "on"   // always draw the progress view
	uiModeOff  uiMode = "off"  // plain per-file lines (or nothing with --quiet)
)

// readUIMode parses the --ui flag; an empty value means auto.
func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected %s|%s|%s)", value, uiModeAuto, uiModeOn, uiModeOff)
}

// shouldUseTUI resolves auto against stdout, where the build view draws.
func shouldUseTUI(mode uiMode) bool {
	if mode == uiModeAuto {
		return isTerminal(os.Stdout)
	}
	return mode == uiModeOn
}
