package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"kestrel/internal/diag"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	redef := diag.NewError(diag.SemaRedefinition, 7, `"x" is already defined in this scope`).
		WithNote(3, `previous definition of "x"`)
	redef.Path = "/home/user/project/trees/prog.json"
	bag.Add(redef)
	info := diag.New(diag.SevInfo, diag.ObsTimings, 0, "timings (pipeline): total 1.00 ms").WithNote(0, `{"kind":"pipeline"}`)
	info.Path = "/home/user/project/trees/prog.json"
	bag.Add(info)
	return bag
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/trees/prog.json:7"},
		{"Relative path", PathModeRelative, "trees/prog.json:7"},
		{"Basename only", PathModeBasename, "prog.json:7"},
		{"Auto inside base", PathModeAuto, "trees/prog.json:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Pretty(&buf, sampleBag(), PrettyOpts{
				PathMode:  tt.mode,
				BaseDir:   "/home/user/project",
				ShowNotes: true,
			})
			if err != nil {
				t.Fatalf("pretty: %v", err)
			}
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			for _, want := range []string{"ERROR", "SEM3002", "already defined", "note:", "prog.json:3"} {
				if !strings.Contains(output, want) {
					t.Errorf("Expected %q in output:\n%s", want, output)
				}
			}
		})
	}
}

func TestAutoPathOutsideBaseIsKept(t *testing.T) {
	if got := formatPath("/srv/other/prog.json", PathModeAuto, "/home/user/project"); got != "/srv/other/prog.json" {
		t.Fatalf("auto path = %q", got)
	}
	if got := location("", 4); got != "line 4" {
		t.Fatalf("location without path = %q", got)
	}
}

func TestPrettyWithoutColorHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(), PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("unexpected ANSI escapes:\n%q", buf.String())
	}
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes must be hidden unless ShowNotes is set")
	}

	buf.Reset()
	if err := Pretty(&buf, sampleBag(), PrettyOpts{Color: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes with Color set")
	}
}

func TestPrettyTruncatesToWidth(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.GenFormatArgCount, 2, strings.Repeat("ж", 40)))
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, PrettyOpts{Width: 10}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "…") || strings.Contains(buf.String(), strings.Repeat("ж", 11)) {
		t.Fatalf("message not truncated:\n%s", buf.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, sampleBag(), PathModeBasename, ""); err != nil {
		t.Fatalf("short: %v", err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if first != `prog.json:7: SEM3002 "x" is already defined in this scope` {
		t.Fatalf("unexpected short line %q", first)
	}
}

func TestJSONKeepsTimingNotes(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatalf("notes included without IncludeNotes")
	}
	timing := out.Diagnostics[1]
	if timing.Code != "OBS6001" || len(timing.Notes) != 1 || timing.Location.File != "prog.json" {
		t.Fatalf("unexpected timing entry %+v", timing)
	}
}

func TestParseOptions(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Fatalf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if _, err := ParseFormat("sarif"); err == nil {
		t.Fatalf("sarif must be rejected")
	}
	if m, err := ParseColorMode("off"); err != nil || m.Enabled(nil) {
		t.Fatalf("off mode enabled color")
	}
	if m, _ := ParseColorMode("on"); !m.Enabled(nil) {
		t.Fatalf("on mode disabled color")
	}
	if m, _ := ParseColorMode("auto"); m.Enabled(nil) {
		t.Fatalf("auto without a terminal must not color")
	}
}

func TestWriteSortsBag(t *testing.T) {
	bag := diag.NewBag(4)
	late := diag.NewError(diag.SemaBreakOutsideLoop, 9, "late")
	early := diag.NewError(diag.SemaBreakOutsideLoop, 2, "early")
	bag.Add(late)
	bag.Add(early)
	var buf bytes.Buffer
	if err := Write(&buf, bag, Options{Format: FormatShort}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "line 2:") {
		t.Fatalf("bag not sorted:\n%s", buf.String())
	}
}
