package syntax

import (
	"kumeo/ast"
	"kumeo/report"
)

// parseWorkflow parses a `workflow` declaration:
//
//	workflow := 'workflow' Ident '{' section* '}'
func (p *Parser) parseWorkflow() *ast.Workflow {
	start := p.want(TOK_WORKFLOW)
	name := p.wantIdentLike()
	p.want(TOK_LBRACE)

	w := &ast.Workflow{
		Name:     name.Value,
		NameSpan: name.Span,
	}

	for !p.got(TOK_RBRACE) {
		if p.got(TOK_EOF) {
			p.reject(TOK_RBRACE)
		}

		// Stray commas between sections are tolerated.
		if p.got(TOK_COMMA) {
			p.next()
			continue
		}

		p.parseWorkflowSection(w)
	}

	end := p.want(TOK_RBRACE)
	w.NodeBase = ast.NewNodeBase(report.NewSpanOver(start.Span, end.Span))
	return w
}

// parseWorkflowSection parses one `name: value` section of a workflow body.
func (p *Parser) parseWorkflowSection(w *ast.Workflow) {
	name := p.wantIdentLike()
	p.want(TOK_COLON)

	switch name.Kind {
	case TOK_SOURCE:
		w.Sources = append(w.Sources, p.parseEndpointList()...)
	case TOK_TARGET:
		w.Targets = append(w.Targets, p.parseEndpointList()...)
	case TOK_CONTEXT:
		w.Contexts = append(w.Contexts, p.parseEndpointList()...)
	case TOK_PREPROCESSORS:
		w.Preprocessors = append(w.Preprocessors, p.parseAgentList()...)
	case TOK_AGENTS:
		w.Agents = append(w.Agents, p.parseAgentList()...)
	case TOK_MONITOR:
		w.Monitor = p.parseSectionObject(name)
	case TOK_DEPLOYMENT:
		w.Deployment = p.parseSectionObject(name)
	case TOK_CONFIG:
		w.ResourceMaps = append(w.ResourceMaps, p.parseResourceMap(name))
	default:
		switch name.Value {
		case "data", "models", "schemas":
			w.ResourceMaps = append(w.ResourceMaps, p.parseResourceMap(name))
		default:
			p.warnOn(report.CodeWarnUnknown, name.Span, "unknown workflow section `%s`", name.Value)
			p.parseValue()
		}
	}
}

// parseResourceMap parses a resource map section such as `models: { ... }`.
func (p *Parser) parseResourceMap(name *Token) *ast.ResourceMap {
	obj := p.parseSectionObject(name)

	return &ast.ResourceMap{
		NodeBase: ast.NewNodeBase(report.NewSpanOver(name.Span, obj.Span())),
		Name:     name.Value,
		NameSpan: name.Span,
		Object:   obj,
	}
}

// parseSectionObject parses a section whose value must be an object.
func (p *Parser) parseSectionObject(name *Token) *ast.Object {
	v := p.parseValue()
	obj, ok := v.(*ast.Object)
	if !ok {
		report.Raise(report.CodeParseValue, p.file, v.Span(), "`%s` section requires an object value", name.Value)
	}

	return obj
}

// parseEndpointList parses a source/target/context section value: either a
// single constructor call or an array of them.
func (p *Parser) parseEndpointList() []ast.Value {
	if !p.got(TOK_LBRACKET) {
		return []ast.Value{p.parseValue()}
	}

	arr, ok := p.parseValue().(*ast.Array)
	if !ok {
		// parseValue on `[` always yields an array; guard anyway.
		return nil
	}

	return arr.Elements
}

// parseAgentList parses the `agents` or `preprocessors` section value:
//
//	'[' (agent (',' agent)*)? ','? ']'
func (p *Parser) parseAgentList() []*ast.Agent {
	p.want(TOK_LBRACKET)

	var agents []*ast.Agent
	for !p.got(TOK_RBRACKET) {
		if p.got(TOK_EOF) {
			p.reject(TOK_RBRACKET)
		}

		if agent := p.parseAgent(); agent != nil {
			agents = append(agents, agent)
		}

		if p.got(TOK_COMMA) {
			p.next()
			if p.got(TOK_COMMA) {
				p.rejectWith(report.CodeParseValue, "expected agent or `]`")
			}
		} else if !p.got(TOK_RBRACKET) {
			p.reject(TOK_RBRACKET)
		}
	}

	p.want(TOK_RBRACKET)
	return agents
}

// parseAgent parses one agent declaration: a constructor call whose name is
// one of the closed agent kinds or `Custom`.  Unknown kind names are reported
// and the declaration is skipped; the surrounding list keeps parsing.
func (p *Parser) parseAgent() *ast.Agent {
	name := p.want(TOK_IDENT)
	call := p.parseCallTail(name)

	agent := &ast.Agent{
		NodeBase: ast.NewNodeBase(call.Span()),
		Args:     call.Args,
	}

	if name.Value == "Custom" {
		agent.Kind = ast.AgentCustom

		pos := call.Positional()
		if len(pos) == 0 {
			report.Raise(report.CodeParseValue, p.file, call.Span(), "`Custom` agent requires a name as its first argument")
		}

		nameLit, ok := pos[0].(*ast.StringLit)
		if !ok {
			report.Raise(report.CodeParseValue, p.file, pos[0].Span(), "`Custom` agent name must be a string")
		}
		agent.CustomName = nameLit.Value
	} else {
		kind, ok := ast.AgentKindOf(name.Value)
		if !ok {
			p.r.ReportError(report.CodeParseItem, p.file, name.Span, "unknown agent kind `"+name.Value+"`")
			return nil
		}
		agent.Kind = kind
	}

	// Pull the `id:` argument out of the argument list, if present.
	if arg := agent.NamedArg("id"); arg != nil {
		idLit, ok := arg.Value.(*ast.StringLit)
		if !ok {
			report.Raise(report.CodeParseValue, p.file, arg.Value.Span(), "agent `id` must be a string")
		}

		agent.ID = idLit.Value
		agent.IDSpan = arg.Span()
	}

	return agent
}

// -----------------------------------------------------------------------------

// parseSubworkflow parses a `subworkflow` declaration.
func (p *Parser) parseSubworkflow() *ast.Subworkflow {
	start := p.want(TOK_SUBWORKFLOW)
	name := p.wantIdentLike()
	p.want(TOK_LBRACE)

	s := &ast.Subworkflow{
		Name:     name.Value,
		NameSpan: name.Span,
	}

	for !p.got(TOK_RBRACE) {
		if p.got(TOK_EOF) {
			p.reject(TOK_RBRACE)
		}

		if p.got(TOK_COMMA) {
			p.next()
			continue
		}

		secName := p.wantIdentLike()
		p.want(TOK_COLON)

		switch secName.Kind {
		case TOK_INPUT:
			s.Inputs = p.parseNameList(secName)
		case TOK_OUTPUT:
			s.Outputs = p.parseNameList(secName)
		case TOK_CONTEXT:
			s.Contexts = append(s.Contexts, p.parseEndpointList()...)
		case TOK_AGENTS:
			s.Agents = append(s.Agents, p.parseAgentList()...)
		default:
			p.warnOn(report.CodeWarnUnknown, secName.Span, "unknown subworkflow section `%s`", secName.Value)
			p.parseValue()
		}
	}

	end := p.want(TOK_RBRACE)
	s.NodeBase = ast.NewNodeBase(report.NewSpanOver(start.Span, end.Span))
	return s
}

// parseNameList parses a subworkflow input/output declaration: an array of
// string names.
func (p *Parser) parseNameList(secName *Token) []*ast.NamedString {
	v := p.parseValue()
	arr, ok := v.(*ast.Array)
	if !ok {
		report.Raise(report.CodeParseValue, p.file, v.Span(), "`%s` section requires an array of strings", secName.Value)
	}

	var names []*ast.NamedString
	for _, e := range arr.Elements {
		lit, ok := e.(*ast.StringLit)
		if !ok {
			report.Raise(report.CodeParseValue, p.file, e.Span(), "`%s` entries must be strings", secName.Value)
		}

		names = append(names, &ast.NamedString{
			NodeBase: ast.NewNodeBase(e.Span()),
			Value:    lit.Value,
		})
	}

	return names
}

// -----------------------------------------------------------------------------

// parseIntegration parses an `integration` declaration:
//
//	integration := 'integration' '{' kvEntry (',' kvEntry)* '}'
func (p *Parser) parseIntegration() *ast.Integration {
	start := p.want(TOK_INTEGRATION)
	p.want(TOK_LBRACE)

	i := &ast.Integration{}

	for !p.got(TOK_RBRACE) {
		if p.got(TOK_EOF) {
			p.reject(TOK_RBRACE)
		}

		if p.got(TOK_COMMA) {
			p.next()
			continue
		}

		key := p.wantIdentLike()
		p.want(TOK_COLON)

		switch key.Kind {
		case TOK_WORKFLOW:
			ref := p.wantIdentLike()
			i.Workflow = ref.Value
			i.WorkflowSpan = ref.Span
		case TOK_USE:
			ref := p.wantIdentLike()
			i.Use = ref.Value
			i.UseSpan = ref.Span
		case TOK_INPUT:
			i.InputMapping = p.parseMapping(key)
		case TOK_OUTPUT:
			i.OutputMapping = p.parseMapping(key)
		default:
			p.warnOn(report.CodeWarnUnknown, key.Span, "unknown integration entry `%s`", key.Value)
			p.parseValue()
		}
	}

	end := p.want(TOK_RBRACE)

	if i.Workflow == "" {
		report.Raise(report.CodeParseValue, p.file, start.Span, "integration requires a `workflow` entry")
	}
	if i.Use == "" {
		report.Raise(report.CodeParseValue, p.file, start.Span, "integration requires a `use` entry")
	}

	i.NodeBase = ast.NewNodeBase(report.NewSpanOver(start.Span, end.Span))
	return i
}

// parseMapping parses an integration input/output mapping: an object whose
// values are paths in the host workflow.
func (p *Parser) parseMapping(key *Token) []*ast.MappingEntry {
	v := p.parseValue()
	obj, ok := v.(*ast.Object)
	if !ok {
		report.Raise(report.CodeParseValue, p.file, v.Span(), "`%s` mapping requires an object value", key.Value)
	}

	var entries []*ast.MappingEntry
	for _, f := range obj.Fields {
		entries = append(entries, &ast.MappingEntry{
			NodeBase: ast.NewNodeBase(f.Span()),
			Name:     f.Name,
			NameSpan: f.NameSpan,
			Path:     f.Value,
		})
	}

	return entries
}
