package syntax

import "kumeo/report"

// Token represents a single lexical token.
type Token struct {
	Kind  int
	Value string
	Span  *report.TextSpan
}

// Enumeration of token kinds.
const (
	// Keywords.
	TOK_WORKFLOW = iota
	TOK_SUBWORKFLOW
	TOK_INTEGRATION
	TOK_SOURCE
	TOK_TARGET
	TOK_CONTEXT
	TOK_AGENTS
	TOK_PREPROCESSORS
	TOK_MONITOR
	TOK_DEPLOYMENT
	TOK_INPUT
	TOK_OUTPUT
	TOK_MAPPING
	TOK_USE
	TOK_CONFIG

	// Literal values.
	TOK_IDENT
	TOK_STRINGLIT
	TOK_NUMLIT
	TOK_BOOLLIT
	TOK_NULL

	// Punctuation.
	TOK_LBRACE
	TOK_RBRACE
	TOK_LBRACKET
	TOK_RBRACKET
	TOK_LPAREN
	TOK_RPAREN
	TOK_COMMA
	TOK_COLON
	TOK_DOT
	TOK_ASSIGN

	// End of file.
	TOK_EOF
)

// keywordPatterns maps keyword lexemes to their token kinds.  Agent kind names
// and source/target/context constructor names are deliberately absent: they
// are contextual and lex as plain identifiers.
var keywordPatterns = map[string]int{
	"workflow":      TOK_WORKFLOW,
	"subworkflow":   TOK_SUBWORKFLOW,
	"integration":   TOK_INTEGRATION,
	"source":        TOK_SOURCE,
	"target":        TOK_TARGET,
	"context":       TOK_CONTEXT,
	"agents":        TOK_AGENTS,
	"preprocessors": TOK_PREPROCESSORS,
	"monitor":       TOK_MONITOR,
	"deployment":    TOK_DEPLOYMENT,
	"input":         TOK_INPUT,
	"output":        TOK_OUTPUT,
	"mapping":       TOK_MAPPING,
	"use":           TOK_USE,
	"config":        TOK_CONFIG,
}

// symbolPatterns maps punctuation lexemes to their token kinds.
var symbolPatterns = map[string]int{
	"{": TOK_LBRACE,
	"}": TOK_RBRACE,
	"[": TOK_LBRACKET,
	"]": TOK_RBRACKET,
	"(": TOK_LPAREN,
	")": TOK_RPAREN,
	",": TOK_COMMA,
	":": TOK_COLON,
	".": TOK_DOT,
	"=": TOK_ASSIGN,
}

// tokenKindRepr returns a human readable representation of a token kind for
// use in error messages.
func tokenKindRepr(kind int) string {
	switch kind {
	case TOK_IDENT:
		return "identifier"
	case TOK_STRINGLIT:
		return "string literal"
	case TOK_NUMLIT:
		return "number literal"
	case TOK_BOOLLIT:
		return "boolean literal"
	case TOK_NULL:
		return "`null`"
	case TOK_EOF:
		return "end of file"
	}

	for lexeme, tkind := range keywordPatterns {
		if tkind == kind {
			return "`" + lexeme + "`"
		}
	}

	for lexeme, tkind := range symbolPatterns {
		if tkind == kind {
			return "`" + lexeme + "`"
		}
	}

	return "token"
}

// IsKeyword returns whether a token kind is one of the reserved words.  All
// keywords double as section and mapping names, so the parser accepts them
// wherever an identifier is expected.
func IsKeyword(kind int) bool {
	return TOK_WORKFLOW <= kind && kind <= TOK_CONFIG
}
