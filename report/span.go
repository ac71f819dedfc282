package report

// TextSpan represents a region of source text.  Lines and columns are zero
// indexed; the end line and column are exclusive on the column axis and
// inclusive on the line axis.
type TextSpan struct {
	StartLine, StartCol int
	EndLine, EndCol     int

	// StartOffset is the rune offset of the first character of the span
	// within its file.  It is the primary sort key for diagnostics.
	StartOffset int
}

// NewSpanOver creates a new text span spanning two text spans: ie. the span
// starts at the start of the first span and ends at the end of the second.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	return &TextSpan{
		StartLine:   start.StartLine,
		StartCol:    start.StartCol,
		EndLine:     end.EndLine,
		EndCol:      end.EndCol,
		StartOffset: start.StartOffset,
	}
}
