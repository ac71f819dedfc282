package syntax

import (
	"fmt"

	"kumeo/ast"
	"kumeo/report"
)

// Parser parses a token stream into an AST.  Syntax errors inside a top level
// item are raised via panic and recovered at the item boundary; the parser
// then discards tokens until the next `workflow`, `subworkflow`, or
// `integration` keyword and continues, so it always terminates with a
// (possibly empty) program and a set of diagnostics.
type Parser struct {
	r    *report.Reporter
	file string

	toks []*Token
	pos  int
}

// NewParser creates a new parser over the given source text.
func NewParser(r *report.Reporter, file string, src []rune) *Parser {
	return &Parser{
		r:    r,
		file: file,
		toks: NewLexer(r, file, src).Tokens(),
	}
}

// Parse parses the full token stream and returns the program.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{File: p.file}

	for !p.got(TOK_EOF) {
		if item := p.parseItem(); item != nil {
			prog.Items = append(prog.Items, item)
		}
	}

	return prog
}

// parseItem parses one top level item, recovering from any syntax error
// inside it.
func (p *Parser) parseItem() (item ast.Item) {
	defer func() {
		if x := recover(); x != nil {
			se, ok := x.(*report.SourceError)
			if !ok {
				panic(x)
			}

			p.r.ReportError(se.Code, se.File, se.Span, se.Message)
			p.resync()
			item = nil
		}
	}()

	switch p.tok().Kind {
	case TOK_WORKFLOW:
		return p.parseWorkflow()
	case TOK_SUBWORKFLOW:
		return p.parseSubworkflow()
	case TOK_INTEGRATION:
		return p.parseIntegration()
	default:
		p.rejectWith(report.CodeParseItem, "expected `workflow`, `subworkflow`, or `integration`")
		return nil
	}
}

// resync discards tokens until the next top level item keyword or the end of
// the file.
func (p *Parser) resync() {
	for {
		switch p.tok().Kind {
		case TOK_WORKFLOW, TOK_SUBWORKFLOW, TOK_INTEGRATION, TOK_EOF:
			return
		}

		p.next()
	}
}

// -----------------------------------------------------------------------------

// tok returns the current token without consuming it.
func (p *Parser) tok() *Token {
	return p.toks[p.pos]
}

// next consumes and returns the current token.
func (p *Parser) next() *Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return tok
}

// ahead returns the token n positions past the current one.
func (p *Parser) ahead(n int) *Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.pos+n]
}

// got returns whether the current token is of the given kind.
func (p *Parser) got(kind int) bool {
	return p.tok().Kind == kind
}

// gotIdentLike returns whether the current token can stand for an identifier:
// a plain identifier or any keyword.  Section and mapping names reuse the
// reserved words, so identifier positions accept them.
func (p *Parser) gotIdentLike() bool {
	return p.got(TOK_IDENT) || IsKeyword(p.tok().Kind)
}

// want asserts that the current token is of the given kind and consumes it.
func (p *Parser) want(kind int) *Token {
	if !p.got(kind) {
		p.reject(kind)
	}

	return p.next()
}

// wantIdentLike asserts that the current token can stand for an identifier
// and consumes it.
func (p *Parser) wantIdentLike() *Token {
	if !p.gotIdentLike() {
		p.rejectWith(report.CodeParseExpect, "expected identifier")
	}

	return p.next()
}

// reject raises a syntax error reporting that the current token was
// unexpected where a token of the given kind was required.
func (p *Parser) reject(kind int) {
	p.rejectWith(report.CodeParseExpect, "expected %s", tokenKindRepr(kind))
}

// rejectWith raises a syntax error at the current token.
func (p *Parser) rejectWith(code, format string, args ...interface{}) {
	tok := p.tok()

	found := "`" + tok.Value + "`"
	if tok.Kind == TOK_EOF {
		found = "end of file"
	}

	report.Raise(code, p.file, tok.Span, format+", found "+found, args...)
}

// warnOn records a warning at the given span.
func (p *Parser) warnOn(code string, span *report.TextSpan, format string, args ...interface{}) {
	p.r.Report(&report.Diagnostic{
		Severity: report.SevWarning,
		Code:     code,
		File:     p.file,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}
