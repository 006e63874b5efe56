package driver

import (
	"encoding/json"
	"fmt"

	"kestrel/internal/diag"
	"kestrel/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// TimingDiagnostic packs a timing report into an informational diagnostic.
// The JSON form of the report travels as the single note.
func TimingDiagnostic(kind, path string, report observ.Report) diag.Diagnostic {
	if kind == "" {
		kind = "pipeline"
	}
	payload := timingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
	d := diag.New(diag.SevInfo, diag.ObsTimings, 0,
		fmt.Sprintf("timings (%s): total %.2f ms", kind, report.TotalMS))
	d.Path = path
	if data, err := json.Marshal(payload); err == nil {
		d = d.WithNote(0, string(data))
	}
	return d
}

// AppendTimings adds the timing diagnostic to bag even when the bag is
// already full of errors.
func AppendTimings(bag *diag.Bag, kind, path string, report observ.Report) {
	if bag == nil {
		return
	}
	entry := TimingDiagnostic(kind, path, report)
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
