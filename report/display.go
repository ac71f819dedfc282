package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
)

// Display writes all recorded diagnostics to w in canonical order, honoring
// the reporter's log level, followed by a summary line.
func (r *Reporter) Display(w io.Writer) {
	if r.logLevel == LogLevelSilent {
		return
	}

	for _, d := range r.Diagnostics() {
		switch d.Severity {
		case SevError:
			r.displayDiagnostic(w, d, "Error", ErrorStyleBG, ErrorColorFG)
		case SevWarning:
			if r.logLevel >= LogLevelWarning {
				r.displayDiagnostic(w, d, "Warning", WarnStyleBG, WarnColorFG)
			}
		case SevNote:
			if r.logLevel >= LogLevelVerbose {
				r.displayDiagnostic(w, d, "Note", SuccessStyleBG, InfoColorFG)
			}
		}
	}

	if r.logLevel >= LogLevelVerbose {
		r.displaySummary(w)
	}
}

// displayDiagnostic displays a single diagnostic: a banner line naming the
// code, file, and position, the message, and the offending source text when a
// span is attached.
func (r *Reporter) displayDiagnostic(w io.Writer, d *Diagnostic, label string, bg *pterm.Style, fg pterm.Color) {
	fmt.Fprint(w, bg.Sprint(" "+label+" "))
	fmt.Fprint(w, " ", fg.Sprint(d.Code), " ")

	if d.File != "" {
		if d.Span != nil {
			fmt.Fprintf(w, "%s:%d:%d: ", d.File, d.Span.StartLine+1, d.Span.StartCol+1)
		} else {
			fmt.Fprintf(w, "%s: ", d.File)
		}
	}

	fmt.Fprintln(w, d.Message)

	if d.Span != nil {
		if src, ok := r.sourceFor(d.File); ok {
			displaySourceText(w, src, d.Span, fg)
		}
	}

	if d.Hint != "" {
		fmt.Fprintln(w, InfoColorFG.Sprint("hint: ")+d.Hint)
	}

	fmt.Fprintln(w)
}

func (r *Reporter) sourceFor(file string) ([]rune, bool) {
	r.m.Lock()
	defer r.m.Unlock()

	src, ok := r.sources[file]
	return src, ok
}

// displaySummary prints the closing error and warning count line.
func (r *Reporter) displaySummary(w io.Writer) {
	if r.AnyErrors() {
		fmt.Fprint(w, ErrorColorFG.Sprint("Oh no! "))
	} else {
		fmt.Fprint(w, SuccessColorFG.Sprint("All done! "))
	}

	fmt.Fprintf(w, "(%s, %s)\n", countNoun(r.ErrorCount(), "error"), countNoun(r.WarningCount(), "warning"))
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return fmt.Sprintf("%d %ss", n, noun)
}

// -----------------------------------------------------------------------------

// displaySourceText displays the segment of source text selected by a span
// with carret underlining.
func displaySourceText(w io.Writer, src []rune, span *TextSpan, fg pterm.Color) {
	// Collect the source lines the span covers.
	var lines []string
	{
		var sb strings.Builder
		ln := 0
		for _, c := range src {
			if c == '\n' {
				if span.StartLine <= ln && ln <= span.EndLine {
					lines = append(lines, strings.ReplaceAll(sb.String(), "\t", "    "))
				}
				sb.Reset()
				ln++
				continue
			}

			sb.WriteRune(c)
		}
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sb.String(), "\t", "    "))
		}
	}

	if len(lines) == 0 {
		return
	}

	// Calculate the minimum line indentation so it can be trimmed off.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := 0
		for _, c := range line {
			if c == ' ' {
				lineIndent++
			} else {
				break
			}
		}

		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		fmt.Fprintf(w, lineNumFmtStr, i+span.StartLine+1)
		fmt.Fprintln(w, line[minIndent:])

		fmt.Fprint(w, strings.Repeat(" ", maxLineNumLen), " | ")

		// Underlining starts at the start column on the first line and at
		// column zero on every continuation line.
		var carretPrefixCount int
		if i == 0 {
			carretPrefixCount = span.StartCol - minIndent
			if carretPrefixCount < 0 {
				carretPrefixCount = 0
			}
		}

		// Underlining runs to the end column on the last line and to the end
		// of the line on every other line.
		var carretSuffixCount int
		if i == len(lines)-1 {
			carretSuffixCount = len(line) - span.EndCol
		}

		carretCount := len(line) - carretSuffixCount - carretPrefixCount - minIndent
		if carretCount < 1 {
			carretCount = 1
		}

		fmt.Fprint(w, strings.Repeat(" ", carretPrefixCount))
		fmt.Fprintln(w, fg.Sprint(strings.Repeat("^", carretCount)))
	}
}
