package report

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterCounts(t *testing.T) {
	r := NewReporter(LogLevelVerbose)

	r.ReportError(CodeSemRef, "a.kumeo", nil, "unresolved reference")
	r.ReportError(CodeSemDup, "a.kumeo", nil, "duplicate id")
	r.ReportWarning(CodeWarnUnknown, "a.kumeo", nil, "unknown key")

	assert.True(t, r.AnyErrors())
	assert.Equal(t, 2, r.ErrorCount())
	assert.Equal(t, 1, r.WarningCount())
	assert.Len(t, r.Diagnostics(), 3)
}

func TestReporterNoErrors(t *testing.T) {
	r := NewReporter(LogLevelVerbose)

	assert.False(t, r.AnyErrors())
	assert.Zero(t, r.ErrorCount())

	r.ReportWarning(CodeWarnRange, "a.kumeo", nil, "temperature out of range")
	assert.False(t, r.AnyErrors())
}

func TestDiagnosticsSortedByPosition(t *testing.T) {
	r := NewReporter(LogLevelVerbose)

	late := &TextSpan{StartLine: 5, StartCol: 0, EndLine: 5, EndCol: 3, StartOffset: 80}
	early := &TextSpan{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 6, StartOffset: 10}

	r.ReportError(CodeSemShape, "a.kumeo", late, "later")
	r.ReportError(CodeSemRef, "a.kumeo", early, "earlier")

	diags := r.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "earlier", diags[0].Message)
	assert.Equal(t, "later", diags[1].Message)
}

func TestReporterConcurrentUse(t *testing.T) {
	r := NewReporter(LogLevelSilent)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.ReportError(CodeSemRef, "a.kumeo", nil, "boom")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 16*50, r.ErrorCount())
}

func TestCatchErrors(t *testing.T) {
	r := NewReporter(LogLevelVerbose)

	func() {
		defer CatchErrors(r)
		Raise(CodeParseExpect, "a.kumeo", nil, "expected `%s`", "}")
	}()

	require.Equal(t, 1, r.ErrorCount())
	assert.Equal(t, CodeParseExpect, r.Diagnostics()[0].Code)
	assert.Equal(t, "expected `}`", r.Diagnostics()[0].Message)
}

func TestCatchErrorsRethrowsForeignPanics(t *testing.T) {
	r := NewReporter(LogLevelVerbose)

	assert.Panics(t, func() {
		defer CatchErrors(r)
		panic("not a source error")
	})
}

func TestDisplaySummary(t *testing.T) {
	r := NewReporter(LogLevelVerbose)
	r.AddSource("a.kumeo", []rune("workflow W {\n}\n"))
	r.ReportError(CodeSemDup, "a.kumeo",
		&TextSpan{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 8, StartOffset: 0},
		"duplicate agent id `a`")

	var buf bytes.Buffer
	r.Display(&buf)

	out := buf.String()
	assert.Contains(t, out, "E-SEM-DUP")
	assert.Contains(t, out, "duplicate agent id `a`")
	assert.Contains(t, out, "Oh no!")
}

func TestDisplaySilent(t *testing.T) {
	r := NewReporter(LogLevelSilent)
	r.ReportError(CodeSemDup, "a.kumeo", nil, "duplicate")

	var buf bytes.Buffer
	r.Display(&buf)

	assert.Empty(t, buf.String())
}
