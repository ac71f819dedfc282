package walk

import (
	"fmt"

	"kumeo/ast"
	"kumeo/ir"
	"kumeo/report"
)

// validateSubworkflow analyzes a subworkflow standalone: its own scope,
// shapes, and topology.  The records are discarded; only diagnostics matter
// here.  Splicing re-validates the agents inside the host workflow.
func (w *Walker) validateSubworkflow(sub *ast.Subworkflow) {
	sc := w.buildSubworkflowScope(sub)

	g := ir.NewGraph()
	for _, agent := range sc.order {
		rec := w.walkAgent(sc, agent)
		g.AddAgent(rec)
	}

	for _, de := range sc.directEdges {
		g.AddEdge(&ir.Edge{Kind: ir.EdgeDirect, From: de.from, To: de.to, Span: de.span})
	}

	w.checkCycles(sc, g)
}

// expandIntegrations splices every integration's subworkflow agents into its
// host workflow, returning the extra agents per host workflow name.  Spliced
// agent ids are prefixed with the integration's use name; `input.*` and
// `output.*` references are rewritten per the mapping.
func (w *Walker) expandIntegrations() map[string][]*ast.Agent {
	spliced := make(map[string][]*ast.Agent)

	for _, item := range w.prog.Items {
		integ, ok := item.(*ast.Integration)
		if !ok {
			continue
		}

		host, ok := w.workflows[integ.Workflow]
		if !ok {
			w.r.ReportError(report.CodeSemInteg, w.file, integ.WorkflowSpan,
				fmt.Sprintf("integration references undeclared workflow `%s`", integ.Workflow))
			continue
		}

		sub, ok := w.subworkflows[integ.Use]
		if !ok {
			w.r.ReportError(report.CodeSemInteg, w.file, integ.UseSpan,
				fmt.Sprintf("integration references undeclared subworkflow `%s`", integ.Use))
			continue
		}

		inputMap := w.checkMapping(integ.InputMapping, sub.Inputs, sub.Name, integ, "input")
		outputMap := w.checkMapping(integ.OutputMapping, sub.Outputs, sub.Name, integ, "output")

		w.checkOutputTargets(host, integ.OutputMapping)

		spliced[host.Name] = append(spliced[host.Name],
			w.spliceAgents(sub, integ.Use, inputMap, outputMap)...)
	}

	return spliced
}

// checkMapping validates one side of an integration mapping against the
// subworkflow's declared names: every declared name bound exactly once, no
// unknown names.  A second binding of the same name is a duplicate error at
// the second span.
func (w *Walker) checkMapping(entries []*ast.MappingEntry, declared []*ast.NamedString, subName string, integ *ast.Integration, side string) map[string]ast.Value {
	names := make(map[string]bool, len(declared))
	for _, d := range declared {
		names[d.Value] = true
	}

	bound := make(map[string]ast.Value, len(entries))
	for _, e := range entries {
		if !names[e.Name] {
			w.r.ReportError(report.CodeSemInteg, w.file, e.NameSpan,
				fmt.Sprintf("subworkflow `%s` declares no %s `%s`", subName, side, e.Name))
			continue
		}

		if _, dup := bound[e.Name]; dup {
			w.r.ReportError(report.CodeSemInteg, w.file, e.NameSpan,
				fmt.Sprintf("%s `%s` is bound twice", side, e.Name))
			continue
		}

		bound[e.Name] = e.Path
	}

	for _, d := range declared {
		if _, ok := bound[d.Value]; !ok {
			w.r.ReportError(report.CodeSemInteg, w.file, integ.Span(),
				fmt.Sprintf("integration of `%s` is missing a binding for %s `%s`", subName, side, d.Value))
		}
	}

	return bound
}

// checkOutputTargets verifies that output mappings naming a host target refer
// to a declared one.
func (w *Walker) checkOutputTargets(host *ast.Workflow, entries []*ast.MappingEntry) {
	for _, e := range entries {
		dotted, node := mappingPath(e)
		if dotted == "" {
			continue
		}

		root, rest := splitRoot(dotted)
		if root != "target" {
			continue
		}

		if len(host.Targets) == 0 {
			w.r.ReportError(report.CodeSemInteg, w.file, node.Span(),
				fmt.Sprintf("workflow `%s` declares no targets", host.Name))
			continue
		}

		if rest == "" {
			continue
		}

		valid := false
		for i := range host.Targets {
			if dotted == fmt.Sprintf("target.%d", i+1) {
				valid = true
				break
			}
		}

		if !valid {
			w.r.ReportError(report.CodeSemInteg, w.file, node.Span(),
				fmt.Sprintf("`%s` does not name a declared target of workflow `%s`", dotted, host.Name))
		}
	}
}

func mappingPath(e *ast.MappingEntry) (string, ast.Node) {
	switch p := e.Path.(type) {
	case *ast.PathExpr:
		return p.String(), p
	case *ast.StringLit:
		return p.Value, p
	}

	return "", nil
}

// -----------------------------------------------------------------------------

// spliceAgents clones the subworkflow's agents for insertion into the host
// workflow.  Ids gain the use-name prefix; `input.*` and `output.*`
// references are replaced by the mapped host paths; references to sibling
// agents are re-pointed at the prefixed ids.
func (w *Walker) spliceAgents(sub *ast.Subworkflow, prefix string, inputMap, outputMap map[string]ast.Value) []*ast.Agent {
	localIDs := localAgentIDs(sub.Agents)

	rewrite := func(dotted string) ast.Value {
		root, rest := splitRoot(dotted)

		switch root {
		case "input":
			if mapped, ok := inputMap[rest]; ok {
				return mapped
			}
		case "output":
			if mapped, ok := outputMap[rest]; ok {
				return mapped
			}
		default:
			if localIDs[root] && (rest == "" || rest == "output") {
				return &ast.PathExpr{Segments: []string{prefix + "_" + root, "output"}}
			}
		}

		return nil
	}

	var clones []*ast.Agent
	for i, agent := range sub.Agents {
		clone := &ast.Agent{
			NodeBase:   ast.NewNodeBase(agent.Span()),
			Kind:       agent.Kind,
			CustomName: agent.CustomName,
			ID:         prefix + "_" + localID(sub.Agents, i),
			IDSpan:     agent.Span(),
		}

		for _, arg := range agent.Args {
			if arg.Name == "id" {
				continue
			}

			clone.Args = append(clone.Args, &ast.Argument{
				NodeBase: ast.NewNodeBase(arg.Span()),
				Name:     arg.Name,
				NameSpan: arg.NameSpan,
				Value:    rewriteValue(arg.Value, rewrite),
			})
		}

		clones = append(clones, clone)
	}

	return clones
}

// localAgentIDs computes the effective ids of a subworkflow's agents without
// reporting: duplicates were already diagnosed during standalone validation.
func localAgentIDs(agents []*ast.Agent) map[string]bool {
	ids := make(map[string]bool, len(agents))
	for i := range agents {
		ids[localID(agents, i)] = true
	}

	return ids
}

// localID returns the effective id of the i-th agent: the declared id or the
// auto-generated `<kind_lower>_<n>`.
func localID(agents []*ast.Agent, i int) string {
	if agents[i].ID != "" {
		return agents[i].ID
	}

	n := 0
	key := agentKindKey(agents[i])
	for j := 0; j <= i; j++ {
		if agentKindKey(agents[j]) == key {
			n++
		}
	}

	return fmt.Sprintf("%s_%d", key, n)
}

// rewriteValue deep-copies a value, replacing every path or whole-string
// reference for which rewrite returns a replacement.
func rewriteValue(v ast.Value, rewrite func(dotted string) ast.Value) ast.Value {
	switch val := v.(type) {
	case *ast.StringLit:
		if repl := rewrite(val.Value); repl != nil {
			return repl
		}
		return val
	case *ast.PathExpr:
		if repl := rewrite(val.String()); repl != nil {
			return repl
		}
		return val
	case *ast.Array:
		out := &ast.Array{NodeBase: ast.NewNodeBase(val.Span())}
		for _, e := range val.Elements {
			out.Elements = append(out.Elements, rewriteValue(e, rewrite))
		}
		return out
	case *ast.Object:
		out := &ast.Object{NodeBase: ast.NewNodeBase(val.Span())}
		for _, f := range val.Fields {
			out.Fields = append(out.Fields, &ast.ObjectField{
				NodeBase: ast.NewNodeBase(f.Span()),
				Name:     f.Name,
				NameSpan: f.NameSpan,
				Value:    rewriteValue(f.Value, rewrite),
			})
		}
		return out
	case *ast.CallExpr:
		out := &ast.CallExpr{NodeBase: ast.NewNodeBase(val.Span()), Name: val.Name}
		for _, arg := range val.Args {
			out.Args = append(out.Args, &ast.Argument{
				NodeBase: ast.NewNodeBase(arg.Span()),
				Name:     arg.Name,
				NameSpan: arg.NameSpan,
				Value:    rewriteValue(arg.Value, rewrite),
			})
		}
		return out
	default:
		return v
	}
}
