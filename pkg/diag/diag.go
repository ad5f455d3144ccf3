// Package diag collects semantic diagnostics during lowering.
// The reporter is owned by the caller and passed by pointer; passes
// append to it, and the builder flushes it when lowering fails.
package diag

import (
	"fmt"
	"io"
)

// Kind classifies a diagnostic.
type Kind int

const (
	UnknownIdentifier Kind = iota
	TypeMismatch
	MissingReturn
	UnsupportedOperation
	DuplicateSymbol
)

// String returns the kind's display name.
func (k Kind) String() string {
	switch k {
	case UnknownIdentifier:
		return "unknown identifier"
	case TypeMismatch:
		return "type mismatch"
	case MissingReturn:
		return "missing return"
	case UnsupportedOperation:
		return "unsupported operation"
	case DuplicateSymbol:
		return "duplicate symbol"
	}
	return "error"
}

// Diagnostic is one collected error.
type Diagnostic struct {
	Kind Kind
	Msg  string
	Line int
}

// Reporter accumulates diagnostics and prints them on Flush.
type Reporter struct {
	w     io.Writer
	diags []Diagnostic
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report records a diagnostic. A line of 0 means no source position.
func (r *Reporter) Report(kind Kind, line int, format string, args ...interface{}) {
	r.diags = append(r.diags, Diagnostic{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Line: line,
	})
}

// HasErrors reports whether any diagnostics were recorded.
func (r *Reporter) HasErrors() bool {
	return len(r.diags) > 0
}

// Count returns the number of recorded diagnostics.
func (r *Reporter) Count() int {
	return len(r.diags)
}

// Diagnostics returns the recorded diagnostics in order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// Flush prints every diagnostic to the reporter's writer.
func (r *Reporter) Flush() {
	for _, d := range r.diags {
		if d.Line > 0 {
			fmt.Fprintf(r.w, "[%s] %s (line %d)\n", d.Kind, d.Msg, d.Line)
		} else {
			fmt.Fprintf(r.w, "[%s] %s\n", d.Kind, d.Msg)
		}
	}
}
