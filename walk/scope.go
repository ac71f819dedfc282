package walk

import (
	"fmt"
	"strings"

	"kumeo/ast"
	"kumeo/ir"
	"kumeo/report"
)

// reservedPrefixes are the path roots that never name an agent.
var reservedPrefixes = map[string]bool{
	"source":  true,
	"target":  true,
	"context": true,
	"input":   true,
	"output":  true,
	"config":  true,
	"data":    true,
	"models":  true,
	"schemas": true,
}

// scope is the symbol table of one workflow or subworkflow.
type scope struct {
	name string

	// order is the full agent list: preprocessors first, then agents, then
	// any spliced subworkflow agents, in declaration order.
	order []*ast.Agent

	// ids maps each agent in order to its effective id, auto-generated where
	// the declaration carries none.  The AST itself is never mutated.
	ids map[*ast.Agent]string

	// byID maps effective ids back to agents.
	byID map[string]*ast.Agent

	sources  []*ir.Endpoint
	targets  []*ir.Endpoint
	contexts []*ir.Endpoint

	// inputs and outputs are the declared names of a subworkflow scope; nil
	// for workflows.
	inputs  map[string]*report.TextSpan
	outputs map[string]*report.TextSpan

	// resources maps resource map names (`config`, `data`, `models`,
	// `schemas`) to their objects.
	resources map[string]*ast.Object

	// directEdges collects the agent-to-agent references found during
	// resolution, consumed by topology construction.
	directEdges []directEdge
}

// agentID returns the effective id of an agent in this scope.
func (sc *scope) agentID(a *ast.Agent) string {
	return sc.ids[a]
}

// buildWorkflowScope runs the scope-building pass over a workflow: endpoint
// validation, agent id assignment, and resource map registration.
func (w *Walker) buildWorkflowScope(wf *ast.Workflow, extraAgents []*ast.Agent) *scope {
	sc := &scope{
		name:      wf.Name,
		ids:       make(map[*ast.Agent]string),
		byID:      make(map[string]*ast.Agent),
		resources: make(map[string]*ast.Object),
	}

	sc.sources = w.buildEndpoints(wf.Sources, "source")
	sc.targets = w.buildEndpoints(wf.Targets, "target")
	sc.contexts = w.buildEndpoints(wf.Contexts, "context")

	for _, rm := range wf.ResourceMaps {
		if _, ok := sc.resources[rm.Name]; ok {
			w.r.ReportError(report.CodeSemDup, w.file, rm.NameSpan,
				fmt.Sprintf("duplicate `%s` section", rm.Name))
			continue
		}

		sc.resources[rm.Name] = rm.Object
	}

	var all []*ast.Agent
	all = append(all, wf.Preprocessors...)
	all = append(all, wf.Agents...)
	all = append(all, extraAgents...)

	w.assignIDs(sc, all)
	return sc
}

// buildSubworkflowScope runs the scope-building pass over a subworkflow.
func (w *Walker) buildSubworkflowScope(sub *ast.Subworkflow) *scope {
	sc := &scope{
		name:      sub.Name,
		ids:       make(map[*ast.Agent]string),
		byID:      make(map[string]*ast.Agent),
		resources: make(map[string]*ast.Object),
		inputs:    make(map[string]*report.TextSpan),
		outputs:   make(map[string]*report.TextSpan),
	}

	sc.contexts = w.buildEndpoints(sub.Contexts, "context")

	for _, in := range sub.Inputs {
		if _, ok := sc.inputs[in.Value]; ok {
			w.r.ReportError(report.CodeSemDup, w.file, in.Span(),
				fmt.Sprintf("duplicate input name `%s`", in.Value))
			continue
		}
		sc.inputs[in.Value] = in.Span()
	}

	for _, out := range sub.Outputs {
		if _, ok := sc.outputs[out.Value]; ok {
			w.r.ReportError(report.CodeSemDup, w.file, out.Span(),
				fmt.Sprintf("duplicate output name `%s`", out.Value))
			continue
		}
		sc.outputs[out.Value] = out.Span()
	}

	w.assignIDs(sc, sub.Agents)
	return sc
}

// assignIDs records the effective id of every agent: the declared `id:` when
// present, otherwise `<kind_lower>_<n>` where n is the 1-based ordinal of
// agents of that kind in declaration order.  Duplicates are reported at the
// second declaration.
func (w *Walker) assignIDs(sc *scope, agents []*ast.Agent) {
	kindCounts := make(map[string]int)

	for _, agent := range agents {
		kindKey := agentKindKey(agent)
		kindCounts[kindKey]++

		id := agent.ID
		if id == "" {
			id = fmt.Sprintf("%s_%d", kindKey, kindCounts[kindKey])
		} else {
			w.checkIdent(id, agent.IDSpan)
		}

		if _, ok := sc.byID[id]; ok {
			span := agent.IDSpan
			if span == nil {
				span = agent.Span()
			}
			w.r.ReportError(report.CodeSemDup, w.file, span,
				fmt.Sprintf("duplicate agent id `%s`", id))
			continue
		}

		sc.ids[agent] = id
		sc.byID[id] = agent
		sc.order = append(sc.order, agent)
	}
}

// agentKindKey returns the lowercase kind name used for auto-generated ids.
func agentKindKey(a *ast.Agent) string {
	if a.Kind == ast.AgentCustom {
		return strings.ToLower(a.CustomName)
	}

	return strings.ToLower(ast.AgentKindName(a.Kind))
}

// -----------------------------------------------------------------------------

// endpointArity describes a source/target/context constructor: the closed
// set, with the number of required leading string arguments.
var endpointArity = map[string]int{
	"NATS":            1,
	"HTTP":            1,
	"Kafka":           1,
	"MQTT":            1,
	"File":            1,
	"KnowledgeBase":   1,
	"BayesianNetwork": 1,
	"Database":        2,
	"Custom":          1,
}

// buildEndpoints validates a source/target/context declaration list.  Each
// entry must be a call to one of the closed constructor set; the n-th entry
// binds `<role>.<n>` and the first also binds the bare role name.
func (w *Walker) buildEndpoints(values []ast.Value, role string) []*ir.Endpoint {
	var eps []*ir.Endpoint

	for i, v := range values {
		call, ok := v.(*ast.CallExpr)
		if !ok {
			w.r.ReportError(report.CodeSemShape, w.file, v.Span(),
				fmt.Sprintf("%s must be a constructor call such as NATS(\"topic\")", role))
			continue
		}

		arity, known := endpointArity[call.Name]
		if !known {
			w.r.ReportError(report.CodeSemShape, w.file, call.Span(),
				fmt.Sprintf("unknown %s constructor `%s`", role, call.Name))
			continue
		}

		pos := call.Positional()
		if len(pos) < arity {
			w.r.ReportError(report.CodeSemShape, w.file, call.Span(),
				fmt.Sprintf("`%s` requires %d argument(s)", call.Name, arity))
			continue
		}

		var strArgs []string
		bad := false
		for _, arg := range pos[:arity] {
			lit, ok := arg.(*ast.StringLit)
			if !ok || lit.Value == "" {
				w.r.ReportError(report.CodeSemShape, w.file, arg.Span(),
					fmt.Sprintf("`%s` arguments must be non-empty strings", call.Name))
				bad = true
				break
			}
			strArgs = append(strArgs, lit.Value)
		}
		if bad {
			continue
		}

		ep := &ir.Endpoint{
			Kind:    call.Name,
			Span:    call.Span(),
			Binding: fmt.Sprintf("%s.%d", role, i+1),
			Subject: strArgs[0],
		}

		if call.Name == "Database" {
			ep.Query = strArgs[1]
		}

		for _, arg := range call.Args {
			if arg.Name == "" || arg.Name == "id" {
				continue
			}

			if ep.Options == nil {
				ep.Options = make(map[string]interface{})
			}
			ep.Options[arg.Name] = plainValue(arg.Value)
		}

		eps = append(eps, ep)
	}

	return eps
}
