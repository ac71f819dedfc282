package report

import "fmt"

// SourceError represents an unrecoverable error raised inside a compilation
// phase.  It is thrown via panic and caught at the phase boundary by
// CatchErrors, which records it as a diagnostic.
type SourceError struct {
	Code    string
	File    string
	Span    *TextSpan
	Message string
}

func (se *SourceError) Error() string {
	return se.Message
}

// Raise throws a source error up to the enclosing phase boundary.
func Raise(code, file string, span *TextSpan, format string, args ...interface{}) {
	panic(&SourceError{
		Code:    code,
		File:    file,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	})
}

// CatchErrors is a deferred function which recovers any source errors raised
// within a phase and records them with the given reporter.  Non source-error
// panics are rethrown.
func CatchErrors(r *Reporter) {
	if x := recover(); x != nil {
		if se, ok := x.(*SourceError); ok {
			r.ReportError(se.Code, se.File, se.Span, se.Message)
		} else {
			panic(x)
		}
	}
}
