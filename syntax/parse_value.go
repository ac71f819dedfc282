package syntax

import (
	"strconv"

	"kumeo/ast"
	"kumeo/report"
)

// parseValue parses one value expression:
//
//	value := literal | array | object | call | path
func (p *Parser) parseValue() ast.Value {
	switch tok := p.tok(); tok.Kind {
	case TOK_STRINGLIT:
		p.next()
		return &ast.StringLit{
			NodeBase: ast.NewNodeBase(tok.Span),
			Value:    tok.Value,
		}
	case TOK_NUMLIT:
		p.next()

		num, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			report.Raise(report.CodeParseValue, p.file, tok.Span, "malformed number literal `%s`", tok.Value)
		}

		return &ast.NumberLit{
			NodeBase: ast.NewNodeBase(tok.Span),
			Value:    num,
			Text:     tok.Value,
		}
	case TOK_BOOLLIT:
		p.next()
		return &ast.BoolLit{
			NodeBase: ast.NewNodeBase(tok.Span),
			Value:    tok.Value == "true",
		}
	case TOK_NULL:
		p.next()
		return &ast.NullLit{NodeBase: ast.NewNodeBase(tok.Span)}
	case TOK_LBRACKET:
		return p.parseArray()
	case TOK_LBRACE:
		return p.parseObject()
	default:
		if p.gotIdentLike() {
			name := p.next()

			if p.got(TOK_LPAREN) {
				return p.parseCallTail(name)
			}

			return p.parsePathTail(name)
		}

		p.rejectWith(report.CodeParseValue, "expected value")
		return nil
	}
}

// parseArray parses an array literal.  Trailing commas are permitted; doubled
// commas are an error.
func (p *Parser) parseArray() *ast.Array {
	start := p.want(TOK_LBRACKET)

	arr := &ast.Array{}
	for !p.got(TOK_RBRACKET) {
		if p.got(TOK_EOF) {
			p.reject(TOK_RBRACKET)
		}

		arr.Elements = append(arr.Elements, p.parseValue())

		if p.got(TOK_COMMA) {
			p.next()
			if p.got(TOK_COMMA) {
				p.rejectWith(report.CodeParseValue, "expected value or `]`")
			}
		} else if !p.got(TOK_RBRACKET) {
			p.reject(TOK_RBRACKET)
		}
	}

	end := p.want(TOK_RBRACKET)
	arr.NodeBase = ast.NewNodeBase(report.NewSpanOver(start.Span, end.Span))
	return arr
}

// parseObject parses an object literal:
//
//	object := '{' (kvEntry (',' kvEntry)*)? ','? '}'
//	kvEntry := (Ident | String) ':' value
func (p *Parser) parseObject() *ast.Object {
	start := p.want(TOK_LBRACE)

	obj := &ast.Object{}
	for !p.got(TOK_RBRACE) {
		if p.got(TOK_EOF) {
			p.reject(TOK_RBRACE)
		}

		var key *Token
		if p.got(TOK_STRINGLIT) {
			key = p.next()
		} else {
			key = p.wantIdentLike()
		}

		p.want(TOK_COLON)
		val := p.parseValue()

		obj.Fields = append(obj.Fields, &ast.ObjectField{
			NodeBase: ast.NewNodeBase(report.NewSpanOver(key.Span, val.Span())),
			Name:     key.Value,
			NameSpan: key.Span,
			Value:    val,
		})

		if p.got(TOK_COMMA) {
			p.next()
			if p.got(TOK_COMMA) {
				p.rejectWith(report.CodeParseValue, "expected entry or `}`")
			}
		} else if !p.got(TOK_RBRACE) {
			p.reject(TOK_RBRACE)
		}
	}

	end := p.want(TOK_RBRACE)
	obj.NodeBase = ast.NewNodeBase(report.NewSpanOver(start.Span, end.Span))
	return obj
}

// parseCallTail parses the argument list of a constructor call whose name
// token has already been consumed:
//
//	call := Ident '(' (arg (',' arg)*)? ','? ')'
//	arg  := Ident ':' value | Ident '=' value | value
func (p *Parser) parseCallTail(name *Token) *ast.CallExpr {
	p.want(TOK_LPAREN)

	call := &ast.CallExpr{Name: name.Value}
	for !p.got(TOK_RPAREN) {
		if p.got(TOK_EOF) {
			p.reject(TOK_RPAREN)
		}

		call.Args = append(call.Args, p.parseArg())

		if p.got(TOK_COMMA) {
			p.next()
			if p.got(TOK_COMMA) {
				p.rejectWith(report.CodeParseValue, "expected argument or `)`")
			}
		} else if !p.got(TOK_RPAREN) {
			p.reject(TOK_RPAREN)
		}
	}

	end := p.want(TOK_RPAREN)
	call.NodeBase = ast.NewNodeBase(report.NewSpanOver(name.Span, end.Span))
	return call
}

// parseArg parses one call argument, named or positional.  An argument is
// named when an identifier is immediately followed by `:` or `=`.
func (p *Parser) parseArg() *ast.Argument {
	if p.gotIdentLike() {
		sep := p.ahead(1).Kind
		if sep == TOK_COLON || sep == TOK_ASSIGN {
			name := p.next()
			p.next()
			val := p.parseValue()

			return &ast.Argument{
				NodeBase: ast.NewNodeBase(report.NewSpanOver(name.Span, val.Span())),
				Name:     name.Value,
				NameSpan: name.Span,
				Value:    val,
			}
		}
	}

	val := p.parseValue()
	return &ast.Argument{
		NodeBase: ast.NewNodeBase(val.Span()),
		Value:    val,
	}
}

// parsePathTail parses the remainder of a dotted path whose first segment has
// already been consumed:
//
//	path := Ident ('.' Ident)*
func (p *Parser) parsePathTail(first *Token) *ast.PathExpr {
	path := &ast.PathExpr{Segments: []string{first.Value}}
	endSpan := first.Span

	for p.got(TOK_DOT) {
		p.next()
		seg := p.wantIdentLike()
		path.Segments = append(path.Segments, seg.Value)
		endSpan = seg.Span
	}

	path.NodeBase = ast.NewNodeBase(report.NewSpanOver(first.Span, endSpan))
	return path
}
