package ast

import (
	"fmt"
	"strconv"
	"strings"

	"kumeo/util"
)

// Format renders a program back to DSL source text.  Parsing the result
// yields an AST equal to the input up to spans, comments, and whitespace.
func Format(prog *Program) string {
	p := &printer{}

	for i, item := range prog.Items {
		if i > 0 {
			p.writeln("")
		}
		p.printItem(item)
	}

	return p.sb.String()
}

// FormatValue renders a single value as DSL source text.
func FormatValue(v Value) string {
	p := &printer{}
	p.printValue(v)
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) write(s string) {
	p.sb.WriteString(s)
}

func (p *printer) writeln(s string) {
	p.sb.WriteString(s)
	p.sb.WriteByte('\n')
}

func (p *printer) writeIndent() {
	p.write(strings.Repeat("    ", p.indent))
}

// -----------------------------------------------------------------------------

func (p *printer) printItem(item Item) {
	switch it := item.(type) {
	case *Workflow:
		p.printWorkflow(it)
	case *Subworkflow:
		p.printSubworkflow(it)
	case *Integration:
		p.printIntegration(it)
	}
}

func (p *printer) printWorkflow(w *Workflow) {
	p.writeln("workflow " + w.Name + " {")
	p.indent++

	p.printEndpointSection("source", w.Sources)
	p.printEndpointSection("target", w.Targets)
	p.printEndpointSection("context", w.Contexts)

	p.printAgentSection("preprocessors", w.Preprocessors)
	p.printAgentSection("agents", w.Agents)

	for _, rm := range w.ResourceMaps {
		p.writeIndent()
		p.write(rm.Name + ": ")
		p.printValue(rm.Object)
		p.writeln("")
	}

	if w.Monitor != nil {
		p.writeIndent()
		p.write("monitor: ")
		p.printValue(w.Monitor)
		p.writeln("")
	}

	if w.Deployment != nil {
		p.writeIndent()
		p.write("deployment: ")
		p.printValue(w.Deployment)
		p.writeln("")
	}

	p.indent--
	p.writeln("}")
}

func (p *printer) printSubworkflow(s *Subworkflow) {
	p.writeln("subworkflow " + s.Name + " {")
	p.indent++

	p.printNameList("input", s.Inputs)
	p.printNameList("output", s.Outputs)
	p.printEndpointSection("context", s.Contexts)
	p.printAgentSection("agents", s.Agents)

	p.indent--
	p.writeln("}")
}

func (p *printer) printIntegration(i *Integration) {
	p.writeln("integration {")
	p.indent++

	p.writeIndent()
	p.writeln("workflow: " + i.Workflow + ",")
	p.writeIndent()
	p.writeln("use: " + i.Use + ",")

	p.printMappingSection("input", i.InputMapping)
	p.printMappingSection("output", i.OutputMapping)

	p.indent--
	p.writeln("}")
}

func (p *printer) printMappingSection(name string, entries []*MappingEntry) {
	if len(entries) == 0 {
		return
	}

	p.writeIndent()
	p.writeln(name + ": {")
	p.indent++

	for _, e := range entries {
		p.writeIndent()
		p.write(formatKey(e.Name) + ": ")
		p.printValue(e.Path)
		p.writeln(",")
	}

	p.indent--
	p.writeIndent()
	p.writeln("},")
}

func (p *printer) printEndpointSection(name string, endpoints []Value) {
	if len(endpoints) == 0 {
		return
	}

	p.writeIndent()
	p.write(name + ": ")

	if len(endpoints) == 1 {
		p.printValue(endpoints[0])
	} else {
		p.write("[")
		for i, e := range endpoints {
			if i > 0 {
				p.write(", ")
			}
			p.printValue(e)
		}
		p.write("]")
	}

	p.writeln("")
}

func (p *printer) printNameList(name string, names []*NamedString) {
	if len(names) == 0 {
		return
	}

	p.writeIndent()
	p.write(name + ": [")
	p.write(strings.Join(util.Map(names, func(n *NamedString) string {
		return quoteString(n.Value)
	}), ", "))
	p.writeln("]")
}

func (p *printer) printAgentSection(name string, agents []*Agent) {
	if len(agents) == 0 {
		return
	}

	p.writeIndent()
	p.writeln(name + ": [")
	p.indent++

	for _, a := range agents {
		p.writeIndent()
		p.printAgent(a)
		p.writeln(",")
	}

	p.indent--
	p.writeIndent()
	p.writeln("]")
}

func (p *printer) printAgent(a *Agent) {
	args := a.Args
	if a.Kind == AgentCustom {
		// The parser keeps the kind name as the first positional argument;
		// it is printed once, as the leading name.
		for i, arg := range args {
			if arg.Name == "" {
				if lit, ok := arg.Value.(*StringLit); ok && lit.Value == a.CustomName {
					args = append(append([]*Argument{}, args[:i]...), args[i+1:]...)
				}
				break
			}
		}

		p.write("Custom(" + quoteString(a.CustomName))
		if len(args) > 0 {
			p.write(", ")
		}
	} else {
		p.write(AgentKindName(a.Kind) + "(")
	}

	p.printArgs(args)
	p.write(")")
}

func (p *printer) printArgs(args []*Argument) {
	for i, arg := range args {
		if i > 0 {
			p.write(", ")
		}

		if arg.Name != "" {
			p.write(arg.Name + ": ")
		}

		p.printValue(arg.Value)
	}
}

// -----------------------------------------------------------------------------

func (p *printer) printValue(v Value) {
	switch val := v.(type) {
	case *StringLit:
		if val.Raw {
			p.write(`"""` + val.Value + `"""`)
		} else {
			p.write(quoteString(val.Value))
		}
	case *NumberLit:
		if val.Text != "" {
			p.write(val.Text)
		} else {
			p.write(strconv.FormatFloat(val.Value, 'g', -1, 64))
		}
	case *BoolLit:
		p.write(strconv.FormatBool(val.Value))
	case *NullLit:
		p.write("null")
	case *Array:
		p.write("[")
		for i, e := range val.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.printValue(e)
		}
		p.write("]")
	case *Object:
		if len(val.Fields) == 0 {
			p.write("{}")
			return
		}

		p.writeln("{")
		p.indent++
		for _, f := range val.Fields {
			p.writeIndent()
			p.write(formatKey(f.Name) + ": ")
			p.printValue(f.Value)
			p.writeln(",")
		}
		p.indent--
		p.writeIndent()
		p.write("}")
	case *PathExpr:
		p.write(val.String())
	case *CallExpr:
		p.write(val.Name + "(")
		p.printArgs(val.Args)
		p.write(")")
	}
}

// formatKey prints an object key bare when it is a valid identifier and
// quoted otherwise.
func formatKey(name string) string {
	if isIdentKey(name) {
		return name
	}

	return quoteString(name)
}

func isIdentKey(name string) bool {
	if name == "" {
		return false
	}

	for i, c := range name {
		switch {
		case c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}

	return true
}

// quoteString renders a string as a double-quoted literal with escapes.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')

	for _, c := range s {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(fmt.Sprintf(`\u%04X`, c))
			} else {
				sb.WriteRune(c)
			}
		}
	}

	sb.WriteByte('"')
	return sb.String()
}
