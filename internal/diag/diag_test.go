package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeIDRanges(t *testing.T) {
	cases := map[Code]string{
		SemaUnresolvedSymbol:    "SEM3001",
		GenExpressionTooComplex: "GEN4000",
		IODecode:                "IO5001",
		ObsTimings:              "OBS6001",
		UnknownCode:             "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("code %d: expected %s, got %s", code, want, got)
		}
	}
}

func TestErrorUnwrapsThroughWrapping(t *testing.T) {
	base := Errorf(SemaBreakOutsideLoop, 7, "break statement must be within a while loop")
	wrapped := fmt.Errorf("compile: %w", base)

	de, ok := AsError(wrapped)
	if !ok {
		t.Fatalf("expected *Error in chain")
	}
	if de.Diag.Line != 7 || de.Diag.Code != SemaBreakOutsideLoop {
		t.Fatalf("unexpected diagnostic %+v", de.Diag)
	}
	if _, ok := AsError(errors.New("plain")); ok {
		t.Fatalf("plain error must not convert")
	}
}

func TestBagSortAndLimit(t *testing.T) {
	bag := NewBag(2)
	bag.Add(Diagnostic{Severity: SevError, Path: "b", Line: 1})
	bag.Add(Diagnostic{Severity: SevError, Path: "a", Line: 9})
	if bag.Add(Diagnostic{Severity: SevError, Path: "c", Line: 1}) {
		t.Fatalf("expected limit to reject third diagnostic")
	}
	bag.Sort()
	if bag.Items()[0].Path != "a" {
		t.Fatalf("expected sorted by path, got %q first", bag.Items()[0].Path)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
}

func TestReportErrorFillsPath(t *testing.T) {
	bag := NewBag(4)
	r := BagReporter{Bag: bag}
	ReportError(r, Errorf(SemaRedefinition, 3, "x"), IOLoadFailed, "prog.json")
	ReportError(r, errors.New("disk on fire"), IOLoadFailed, "other.json")
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(items))
	}
	if items[0].Path != "prog.json" || items[0].Code != SemaRedefinition {
		t.Fatalf("unexpected first diagnostic %+v", items[0])
	}
	if items[1].Code != IOLoadFailed {
		t.Fatalf("expected fallback code, got %v", items[1].Code)
	}
}
