package walk

import (
	"fmt"
	"strings"

	"kumeo/ast"
	"kumeo/ir"
	"kumeo/report"
)

// Binding resolution modes.
const (
	bindInput = iota
	bindOutput
)

// directEdge is a direct agent-to-agent reference recorded during
// resolution, later fed into the topology graph.
type directEdge struct {
	from, to string
	span     *report.TextSpan
}

// walkAgent runs reference resolution and shape checking over one agent and
// produces its validated record.
func (w *Walker) walkAgent(sc *scope, agent *ast.Agent) *ir.Agent {
	w.checkShape(sc, agent)

	rec := &ir.Agent{
		ID:         sc.agentID(agent),
		Span:       agent.Span(),
		Kind:       agent.Kind,
		KindName:   ast.AgentKindName(agent.Kind),
		CustomName: agent.CustomName,
	}
	if agent.Kind == ast.AgentCustom {
		rec.KindName = agent.CustomName
	}

	rec.InputSubjects = w.resolveBindingValue(sc, rec.ID, agent.Named("input"), bindInput)
	rec.InputSubjects = append(rec.InputSubjects,
		w.resolveBindingValue(sc, rec.ID, agent.Named("context"), bindInput)...)
	rec.OutputSubjects = w.resolveBindingValue(sc, rec.ID, agent.Named("output"), bindOutput)

	rec.Config = w.buildConfig(sc, rec.ID, agent)
	return rec
}

// resolveBindingValue resolves an `input:`, `context:`, or `output:` value to
// subject strings.  Accepts a single string or path, or an array of them.
func (w *Walker) resolveBindingValue(sc *scope, agentID string, v ast.Value, mode int) []string {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case *ast.StringLit:
		return w.appendBinding(nil, sc, agentID, val, val.Value, mode)
	case *ast.PathExpr:
		return w.appendBinding(nil, sc, agentID, val, val.String(), mode)
	case *ast.Array:
		var subjects []string
		for _, e := range val.Elements {
			switch el := e.(type) {
			case *ast.StringLit:
				subjects = w.appendBinding(subjects, sc, agentID, el, el.Value, mode)
			case *ast.PathExpr:
				subjects = w.appendBinding(subjects, sc, agentID, el, el.String(), mode)
			default:
				w.r.ReportError(report.CodeSemShape, w.file, e.Span(),
					fmt.Sprintf("binding entries must be strings or paths, found %s", valueKindName(e)))
			}
		}
		return subjects
	default:
		w.r.ReportError(report.CodeSemShape, w.file, v.Span(),
			fmt.Sprintf("bindings must be strings, paths, or arrays of them, found %s", valueKindName(v)))
		return nil
	}
}

func (w *Walker) appendBinding(subjects []string, sc *scope, agentID string, node ast.Node, dotted string, mode int) []string {
	if s, ok := w.resolveBinding(sc, agentID, node, dotted, mode); ok {
		return append(subjects, s)
	}

	return subjects
}

// resolveBinding resolves one binding reference to a concrete subject string.
// Resolution rules:
//
//   - a bare or dotted `source`/`context` name resolves to the declared
//     endpoint's subject (inputs only); `target` likewise for outputs
//   - `input.<name>` and `output.<name>` resolve against a subworkflow's
//     declared names
//   - `config.<k>`, `data.<k>`, `models.<k>`, `schemas.<k>` resolve against
//     the workflow's resource maps
//   - `<agent_id>.output` and a bare agent id resolve to a direct edge
//   - anything else is a literal subject name (NATS subjects may contain
//     dots, so unknown-root dotted strings stay literal)
func (w *Walker) resolveBinding(sc *scope, agentID string, node ast.Node, dotted string, mode int) (string, bool) {
	root, rest := splitRoot(dotted)

	switch root {
	case "source", "context":
		if mode != bindInput {
			w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
				fmt.Sprintf("`%s` cannot be written to", dotted))
			return "", false
		}

		return w.resolveEndpointRef(sc, node, dotted, root)
	case "target":
		if mode != bindOutput {
			w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
				fmt.Sprintf("`%s` cannot be read from", dotted))
			return "", false
		}

		return w.resolveEndpointRef(sc, node, dotted, root)
	case "input":
		if sc.inputs == nil {
			w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
				"`input` bindings exist only inside subworkflows")
			return "", false
		}
		if _, ok := sc.inputs[rest]; !ok {
			w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
				fmt.Sprintf("subworkflow `%s` declares no input `%s`", sc.name, rest))
			return "", false
		}

		return dotted, true
	case "output":
		if sc.outputs == nil {
			w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
				"`output` bindings exist only inside subworkflows")
			return "", false
		}
		if _, ok := sc.outputs[rest]; !ok {
			w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
				fmt.Sprintf("subworkflow `%s` declares no output `%s`", sc.name, rest))
			return "", false
		}

		return dotted, true
	case "config", "data", "models", "schemas":
		return w.resolveResourceRef(sc, node, dotted, root, rest)
	}

	// A bare declared agent id, or `<agent_id>.output`, is a direct edge.
	if producer, ok := sc.byID[root]; ok && (rest == "" || rest == "output") {
		producerID := sc.agentID(producer)

		switch mode {
		case bindInput:
			sc.directEdges = append(sc.directEdges, directEdge{from: producerID, to: agentID, span: node.Span()})
		case bindOutput:
			sc.directEdges = append(sc.directEdges, directEdge{from: agentID, to: producerID, span: node.Span()})
		}

		return producerID + ".output", true
	}

	// An undeclared root with an `.output` tail reads as a dangling agent
	// reference, not a subject name.
	if rest == "output" {
		w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
			fmt.Sprintf("`%s` refers to an undeclared agent `%s`", dotted, root))
		return "", false
	}

	return dotted, true
}

// resolveEndpointRef resolves `source`, `source.<n>`, and friends to the
// declared endpoint's subject.
func (w *Walker) resolveEndpointRef(sc *scope, node ast.Node, dotted, role string) (string, bool) {
	var eps []*ir.Endpoint
	switch role {
	case "source":
		eps = sc.sources
	case "target":
		eps = sc.targets
	case "context":
		eps = sc.contexts
	}

	if len(eps) == 0 {
		w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
			fmt.Sprintf("`%s` is not declared in this scope", role))
		return "", false
	}

	if dotted == role {
		return eps[0].Subject, true
	}

	for _, ep := range eps {
		if ep.Binding == dotted {
			return ep.Subject, true
		}
	}

	w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
		fmt.Sprintf("`%s` does not name a declared %s", dotted, role))
	return "", false
}

// resolveResourceRef resolves a resource map reference such as
// `models.fraud`.  String entries resolve to their value; other entries
// resolve to the reference path itself.
func (w *Walker) resolveResourceRef(sc *scope, node ast.Node, dotted, root, rest string) (string, bool) {
	obj, ok := sc.resources[root]
	if !ok {
		w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
			fmt.Sprintf("workflow declares no `%s` section", root))
		return "", false
	}

	key, _ := splitRoot(rest)
	if key == "" {
		w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
			fmt.Sprintf("`%s` does not name an entry of `%s`", dotted, root))
		return "", false
	}

	v := obj.Get(key)
	if v == nil {
		w.r.ReportError(report.CodeSemRef, w.file, node.Span(),
			fmt.Sprintf("`%s` has no entry `%s`", root, key))
		return "", false
	}

	if lit, ok := v.(*ast.StringLit); ok {
		return lit.Value, true
	}

	return dotted, true
}

// buildConfig converts an agent's named arguments (minus the binding and id
// arguments) into the validated configuration object, resolving references
// as it goes.  The LLM `engine`/`provider` forms normalize to a nested
// object under `engine`.
func (w *Walker) buildConfig(sc *scope, agentID string, agent *ast.Agent) map[string]interface{} {
	resolve := func(node ast.Node, dotted string) (string, bool) {
		root, rest := splitRoot(dotted)
		if rest == "" {
			return "", false
		}

		if reservedPrefixes[root] {
			switch root {
			case "source", "target", "context":
				return w.resolveEndpointRef(sc, node, dotted, root)
			case "config", "data", "models", "schemas":
				return w.resolveResourceRef(sc, node, dotted, root, rest)
			case "input", "output":
				return dotted, true
			}
		}

		// Only `<declared_agent>.output` resolves inside general config;
		// all other dotted text, prompt templates included, stays opaque.
		if producer, ok := sc.byID[root]; ok && rest == "output" {
			return sc.agentID(producer) + ".output", true
		}

		return "", false
	}

	config := make(map[string]interface{})
	for _, arg := range agent.Args {
		switch arg.Name {
		case "", "id", "input", "output":
			continue
		}

		config[arg.Name] = convertValue(arg.Value, resolve)
	}

	if agent.Kind == ast.AgentLLM {
		normalizeEngine(config)
	}

	return config
}

// normalizeEngine rewrites the accepted `engine: "x"` and `provider: {...}`
// forms into a single nested object under `engine`.
func normalizeEngine(config map[string]interface{}) {
	if provider, ok := config["provider"]; ok {
		delete(config, "provider")
		if obj, ok := provider.(map[string]interface{}); ok {
			config["engine"] = obj
			return
		}
		config["engine"] = map[string]interface{}{"name": provider}
		return
	}

	if engine, ok := config["engine"]; ok {
		if name, ok := engine.(string); ok {
			config["engine"] = map[string]interface{}{"name": name}
		}
	}
}

// splitRoot splits a dotted reference into its first segment and the rest.
func splitRoot(dotted string) (string, string) {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i], dotted[i+1:]
	}

	return dotted, ""
}
