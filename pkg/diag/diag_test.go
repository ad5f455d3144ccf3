package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestReporterAccumulates(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	if r.HasErrors() {
		t.Error("fresh reporter should be empty")
	}

	r.Report(UnknownIdentifier, 3, "unknown variable %s", "x")
	r.Report(TypeMismatch, 0, "bad assignment")

	if !r.HasErrors() || r.Count() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", r.Count())
	}

	ds := r.Diagnostics()
	if ds[0].Kind != UnknownIdentifier || ds[0].Line != 3 {
		t.Errorf("first diagnostic: %+v", ds[0])
	}
	if ds[0].Msg != "unknown variable x" {
		t.Errorf("message: %q", ds[0].Msg)
	}
}

func TestFlushFormatsLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.Report(MissingReturn, 7, "expected return in function f")
	r.Report(DuplicateSymbol, 0, "f is already defined")
	r.Flush()

	out := buf.String()
	if !strings.Contains(out, "[missing return] expected return in function f (line 7)") {
		t.Errorf("output: %q", out)
	}
	if !strings.Contains(out, "[duplicate symbol] f is already defined\n") {
		t.Errorf("output: %q", out)
	}
	if strings.Contains(out, "(line 0)") {
		t.Error("line 0 must not be printed")
	}
}

func TestKindNames(t *testing.T) {
	names := map[Kind]string{
		UnknownIdentifier:    "unknown identifier",
		TypeMismatch:         "type mismatch",
		MissingReturn:        "missing return",
		UnsupportedOperation: "unsupported operation",
		DuplicateSymbol:      "duplicate symbol",
	}
	for k, want := range names {
		if k.String() != want {
			t.Errorf("kind %d: want %q got %q", k, want, k.String())
		}
	}
}
