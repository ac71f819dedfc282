package syntax

import (
	"fmt"
	"strings"
	"unicode"

	"kumeo/report"
)

// Lexer converts source text into a stream of tokens.  Lexical errors are
// recorded with the reporter; the lexer resynchronizes at the next whitespace
// or punctuation character and continues, so a full token stream is always
// produced.
type Lexer struct {
	r    *report.Reporter
	file string

	src []rune
	pos int

	// tokBuff stores the lexeme of the token currently being built.
	tokBuff strings.Builder

	line, col int

	startLine, startCol, startPos int
}

// NewLexer creates a new lexer for the given source text.
func NewLexer(r *report.Reporter, file string, src []rune) *Lexer {
	return &Lexer{r: r, file: file, src: src}
}

// NextToken returns the next token in the source stream.  Once the source is
// exhausted, it returns a token of kind TOK_EOF forever.
func (l *Lexer) NextToken() *Token {
	for {
		c, ok := l.peek()
		if !ok {
			l.mark()
			return l.makeToken(TOK_EOF)
		}

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.skip()
		case c == '/':
			if !l.skipComment() {
				// A lone slash is not the start of a comment.
				l.mark()
				l.skip()
				l.lexError(report.CodeLexChar, "unexpected character: `/`")
			}
		case c == '"':
			if tok := l.lexString(); tok != nil {
				return tok
			}
		case isDecimalDigit(c):
			if tok := l.lexNumber(); tok != nil {
				return tok
			}
		case c == '-':
			if d, ok := l.peekAt(1); ok && isDecimalDigit(d) {
				if tok := l.lexNegativeNumber(); tok != nil {
					return tok
				}
			} else {
				l.mark()
				l.skip()
				l.lexError(report.CodeLexChar, "unexpected character: `-`")
			}
		case isFirstIdentChar(c):
			return l.lexIdentOrKeyword()
		default:
			if kind, ok := symbolPatterns[string(c)]; ok {
				l.mark()
				l.eat()
				return l.makeToken(kind)
			}

			l.mark()
			l.skip()
			l.lexError(report.CodeLexChar, "unexpected character: `%c`", c)
		}
	}
}

// Tokens lexes the entire source and returns the token stream, terminated by
// a single TOK_EOF token.
func (l *Lexer) Tokens() []*Token {
	var toks []*Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == TOK_EOF {
			return toks
		}
	}
}

// -----------------------------------------------------------------------------

// skipComment consumes a line or block comment.  It returns false if the
// leading slash does not begin a comment, in which case nothing is consumed.
func (l *Lexer) skipComment() bool {
	next, ok := l.peekAt(1)
	if !ok {
		return false
	}

	switch next {
	case '/':
		for {
			c, ok := l.peek()
			if !ok || c == '\n' {
				return true
			}
			l.skip()
		}
	case '*':
		l.mark()
		l.skip()
		l.skip()

		for {
			c, ok := l.peek()
			if !ok {
				l.lexError(report.CodeLexComment, "unterminated block comment")
				return true
			}

			if c == '*' {
				if after, ok := l.peekAt(1); ok && after == '/' {
					l.skip()
					l.skip()
					return true
				}
			}

			l.skip()
		}
	}

	return false
}

// lexString consumes a string literal: either a single-line escaped string or
// a triple-quoted raw string.  It returns nil if the literal was malformed and
// the lexer has resynchronized.
func (l *Lexer) lexString() *Token {
	l.mark()

	if l.lookahead(`"""`) {
		return l.lexRawString()
	}

	l.skip() // opening quote

	for {
		c, ok := l.peek()
		if !ok || c == '\n' {
			l.lexError(report.CodeLexString, "unterminated string literal")
			return nil
		}

		switch c {
		case '"':
			l.skip()
			return l.makeToken(TOK_STRINGLIT)
		case '\\':
			l.skip()
			if !l.lexEscape() {
				return nil
			}
		default:
			l.eat()
		}
	}
}

// lexRawString consumes a triple-quoted string.  The content is raw: escapes
// are not interpreted and the string may span lines, terminating only on the
// next `"""`.
func (l *Lexer) lexRawString() *Token {
	l.skip()
	l.skip()
	l.skip()

	for {
		if _, ok := l.peek(); !ok {
			l.lexError(report.CodeLexString, "unterminated string literal")
			return nil
		}

		if l.lookahead(`"""`) {
			l.skip()
			l.skip()
			l.skip()
			return l.makeToken(TOK_STRINGLIT)
		}

		l.eat()
	}
}

// lexEscape interprets one escape sequence after a consumed backslash and
// writes its value into the token buffer.
func (l *Lexer) lexEscape() bool {
	c, ok := l.peek()
	if !ok {
		l.lexError(report.CodeLexString, "unterminated string literal")
		return false
	}

	switch c {
	case '\\':
		l.skip()
		l.tokBuff.WriteRune('\\')
	case '"':
		l.skip()
		l.tokBuff.WriteRune('"')
	case 'n':
		l.skip()
		l.tokBuff.WriteRune('\n')
	case 'r':
		l.skip()
		l.tokBuff.WriteRune('\r')
	case 't':
		l.skip()
		l.tokBuff.WriteRune('\t')
	case 'u':
		l.skip()

		var code rune
		for i := 0; i < 4; i++ {
			d, ok := l.peek()
			if !ok || !isHexDigit(d) {
				l.lexError(report.CodeLexEscape, "`\\u` escape requires four hexadecimal digits")
				return false
			}
			l.skip()
			code = code*16 + hexValue(d)
		}

		l.tokBuff.WriteRune(code)
	default:
		l.skip()
		l.lexError(report.CodeLexEscape, "unknown escape sequence: `\\%c`", c)
		return false
	}

	return true
}

// lexNumber consumes a decimal integer or float literal with an optional
// exponent.
func (l *Lexer) lexNumber() *Token {
	l.mark()
	return l.lexNumberTail()
}

// lexNegativeNumber consumes a number literal with a leading minus sign.
func (l *Lexer) lexNegativeNumber() *Token {
	l.mark()
	l.eat()
	return l.lexNumberTail()
}

func (l *Lexer) lexNumberTail() *Token {
	for {
		c, ok := l.peek()
		if !ok || !isDecimalDigit(c) {
			break
		}
		l.eat()
	}

	if c, ok := l.peek(); ok && c == '.' {
		// Only consume the dot if a digit follows; otherwise it belongs to a
		// path expression such as `source.transactions`.
		if d, ok := l.peekAt(1); ok && isDecimalDigit(d) {
			l.eat()
			for {
				c, ok := l.peek()
				if !ok || !isDecimalDigit(c) {
					break
				}
				l.eat()
			}
		}
	}

	if c, ok := l.peek(); ok && (c == 'e' || c == 'E') {
		l.eat()

		if c, ok := l.peek(); ok && (c == '+' || c == '-') {
			l.eat()
		}

		d, ok := l.peek()
		if !ok || !isDecimalDigit(d) {
			l.lexError(report.CodeLexNumber, "exponent requires at least one digit")
			return nil
		}

		for {
			c, ok := l.peek()
			if !ok || !isDecimalDigit(c) {
				break
			}
			l.eat()
		}
	}

	return l.makeToken(TOK_NUMLIT)
}

// lexIdentOrKeyword consumes an identifier and promotes it to a keyword or
// named literal token where appropriate.
func (l *Lexer) lexIdentOrKeyword() *Token {
	l.mark()
	l.eat()

	for {
		c, ok := l.peek()
		if !ok || !isIdentChar(c) {
			break
		}
		l.eat()
	}

	lexeme := l.tokBuff.String()

	switch lexeme {
	case "true", "false":
		return l.makeToken(TOK_BOOLLIT)
	case "null":
		return l.makeToken(TOK_NULL)
	}

	if kind, ok := keywordPatterns[lexeme]; ok {
		return l.makeToken(kind)
	}

	return l.makeToken(TOK_IDENT)
}

// -----------------------------------------------------------------------------

// mark begins a new token at the current position.
func (l *Lexer) mark() {
	l.tokBuff.Reset()
	l.startLine = l.line
	l.startCol = l.col
	l.startPos = l.pos
}

// peek returns the rune at the current position without consuming it.
func (l *Lexer) peek() (rune, bool) {
	return l.peekAt(0)
}

// peekAt returns the rune n positions ahead without consuming anything.
func (l *Lexer) peekAt(n int) (rune, bool) {
	if l.pos+n >= len(l.src) {
		return 0, false
	}

	return l.src[l.pos+n], true
}

// lookahead returns whether the source at the current position begins with
// the given text.
func (l *Lexer) lookahead(text string) bool {
	for i, c := range []rune(text) {
		got, ok := l.peekAt(i)
		if !ok || got != c {
			return false
		}
	}

	return true
}

// eat consumes the current rune and appends it to the token buffer.
func (l *Lexer) eat() {
	c, ok := l.peek()
	if !ok {
		return
	}

	l.tokBuff.WriteRune(c)
	l.advance(c)
}

// skip consumes the current rune without recording it.
func (l *Lexer) skip() {
	c, ok := l.peek()
	if !ok {
		return
	}

	l.advance(c)
}

// advance updates the lexer's position counters for a consumed rune.  Tabs
// count as four columns.
func (l *Lexer) advance(c rune) {
	l.pos++

	switch c {
	case '\n':
		l.line++
		l.col = 0
	case '\t':
		l.col += 4
	default:
		l.col++
	}
}

// makeToken builds a token of the given kind whose lexeme and span run from
// the last mark to the current position.
func (l *Lexer) makeToken(kind int) *Token {
	return &Token{
		Kind:  kind,
		Value: l.tokBuff.String(),
		Span:  l.getSpan(),
	}
}

// getSpan returns the span from the last mark to the current position.
func (l *Lexer) getSpan() *report.TextSpan {
	return &report.TextSpan{
		StartLine:   l.startLine,
		StartCol:    l.startCol,
		EndLine:     l.line,
		EndCol:      l.col,
		StartOffset: l.startPos,
	}
}

// lexError records a lexical error over the current token span and
// resynchronizes at the next whitespace or punctuation character.
func (l *Lexer) lexError(code, format string, args ...interface{}) {
	l.r.ReportError(code, l.file, l.getSpan(), fmt.Sprintf(format, args...))

	for {
		c, ok := l.peek()
		if !ok || unicode.IsSpace(c) {
			return
		}
		if _, isPunct := symbolPatterns[string(c)]; isPunct {
			return
		}
		l.skip()
	}
}

// -----------------------------------------------------------------------------

func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDecimalDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func hexValue(c rune) rune {
	switch {
	case isDecimalDigit(c):
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isFirstIdentChar(c rune) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentChar(c rune) bool {
	return isFirstIdentChar(c) || isDecimalDigit(c)
}
