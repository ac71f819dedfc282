package report

import "sync"

// Enumeration of reporter log levels.
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors
	LogLevelWarning        // errors and warnings
	LogLevelVerbose        // errors, warnings, and compiler status messages
)

// Reporter accumulates the diagnostics produced by one compiler run.  Each run
// owns its reporter: a batch driver may run many compilers concurrently, so
// there is no process-global state.  All methods are safe for concurrent use.
type Reporter struct {
	m sync.Mutex

	// logLevel determines what is displayed, never what is recorded.
	logLevel int

	diags []*Diagnostic

	errorCount   int
	warningCount int

	// sources maps display paths to source text so diagnostics can show the
	// offending lines without rereading files from disk.
	sources map[string][]rune
}

// NewReporter creates a new reporter with the given log level.
func NewReporter(logLevel int) *Reporter {
	return &Reporter{
		logLevel: logLevel,
		sources:  make(map[string][]rune),
	}
}

// AddSource registers the text of a source file for use in diagnostic display.
func (r *Reporter) AddSource(file string, text []rune) {
	r.m.Lock()
	defer r.m.Unlock()

	r.sources[file] = text
}

// Report records a diagnostic.
func (r *Reporter) Report(d *Diagnostic) {
	r.m.Lock()
	defer r.m.Unlock()

	r.diags = append(r.diags, d)

	switch d.Severity {
	case SevError:
		r.errorCount++
	case SevWarning:
		r.warningCount++
	}
}

// ReportError records an error diagnostic.
func (r *Reporter) ReportError(code, file string, span *TextSpan, message string) {
	r.Report(&Diagnostic{
		Severity: SevError,
		Code:     code,
		File:     file,
		Span:     span,
		Message:  message,
	})
}

// ReportWarning records a warning diagnostic.
func (r *Reporter) ReportWarning(code, file string, span *TextSpan, message string) {
	r.Report(&Diagnostic{
		Severity: SevWarning,
		Code:     code,
		File:     file,
		Span:     span,
		Message:  message,
	})
}

// AnyErrors returns whether any errors have been recorded: used to determine
// whether the next phase of compilation should proceed.
func (r *Reporter) AnyErrors() bool {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount > 0
}

// ErrorCount returns the number of errors recorded so far.
func (r *Reporter) ErrorCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount
}

// WarningCount returns the number of warnings recorded so far.
func (r *Reporter) WarningCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.warningCount
}

// Diagnostics returns all recorded diagnostics in canonical order: sorted by
// file, start offset, and code.
func (r *Reporter) Diagnostics() []*Diagnostic {
	r.m.Lock()
	defer r.m.Unlock()

	diags := make([]*Diagnostic, len(r.diags))
	copy(diags, r.diags)
	sortDiagnostics(diags)
	return diags
}
