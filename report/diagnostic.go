package report

import "sort"

// Enumeration of diagnostic severities.
const (
	SevError = iota
	SevWarning
	SevNote
)

// Diagnostic represents a single compiler diagnostic: an error, warning, or
// note attached to a location in source text.
type Diagnostic struct {
	// Severity is one of the `Sev*` constants.
	Severity int

	// Code is the stable diagnostic code (eg. `E-SEM-REF`).
	Code string

	// File is the display path of the file the diagnostic refers to.  It may
	// be empty for diagnostics with no file context (eg. I/O failures before
	// any source is read).
	File string

	// Span is the region of source text the diagnostic refers to.  It may be
	// nil for whole-file diagnostics.
	Span *TextSpan

	// Message is the human readable description of the problem.
	Message string

	// Hint optionally suggests a fix.  Empty when there is nothing useful to
	// say.
	Hint string
}

// IsError returns whether this diagnostic aborts compilation.
func (d *Diagnostic) IsError() bool {
	return d.Severity == SevError
}

// sortDiagnostics sorts a slice of diagnostics into the canonical display
// order: by file, then by start offset, then by code.
func sortDiagnostics(diags []*Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]

		if a.File != b.File {
			return a.File < b.File
		}

		aOff, bOff := 0, 0
		if a.Span != nil {
			aOff = a.Span.StartOffset
		}
		if b.Span != nil {
			bOff = b.Span.StartOffset
		}
		if aOff != bOff {
			return aOff < bOff
		}

		return a.Code < b.Code
	})
}
