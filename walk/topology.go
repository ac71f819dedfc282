package walk

import (
	"fmt"
	"strings"

	"kumeo/ir"
	"kumeo/report"
	"kumeo/util"
)

// buildTopology constructs the producer-consumer graph of a workflow.
// Subject edges run through named broker subjects; direct edges were
// collected during reference resolution.
func (w *Walker) buildTopology(sc *scope, wf *ir.Workflow) {
	g := wf.Graph

	for _, agent := range wf.Agents {
		for _, s := range agent.InputSubjects {
			if isDirectSubject(sc, s) {
				continue
			}

			g.AddEdge(&ir.Edge{
				Kind:    ir.EdgeSubject,
				From:    "subject:" + s,
				To:      agent.ID,
				Subject: s,
				Span:    agent.Span,
			})
		}

		for _, s := range agent.OutputSubjects {
			if isDirectSubject(sc, s) {
				continue
			}

			g.AddEdge(&ir.Edge{
				Kind:    ir.EdgeSubject,
				From:    agent.ID,
				To:      "subject:" + s,
				Subject: s,
				Span:    agent.Span,
			})
		}
	}

	for _, de := range sc.directEdges {
		g.AddEdge(&ir.Edge{
			Kind: ir.EdgeDirect,
			From: de.from,
			To:   de.to,
			Span: de.span,
		})
	}
}

// isDirectSubject reports whether a resolved subject string is really a
// direct `<agent_id>.output` reference, which produced a direct edge instead.
func isDirectSubject(sc *scope, s string) bool {
	root, rest := splitRoot(s)
	if rest != "output" {
		return false
	}

	_, ok := sc.byID[root]
	return ok
}

// checkUnused warns about agents whose output feeds nothing: no agent input,
// no declared target, no direct consumer.
func (w *Walker) checkUnused(sc *scope, wf *ir.Workflow) {
	consumed := make(map[string]bool)
	for _, agent := range wf.Agents {
		for _, s := range agent.InputSubjects {
			consumed[s] = true
		}
	}
	for _, ep := range wf.Targets {
		consumed[ep.Subject] = true
	}

	fed := make(map[string]bool)
	for _, de := range sc.directEdges {
		fed[de.from] = true
	}

	for _, agent := range wf.Agents {
		if len(agent.OutputSubjects) == 0 || fed[agent.ID] {
			continue
		}

		used := false
		for _, s := range agent.OutputSubjects {
			if consumed[s] {
				used = true
				break
			}
		}

		if !used {
			w.r.Report(&report.Diagnostic{
				Severity: report.SevWarning,
				Code:     report.CodeWarnUnused,
				File:     w.file,
				Span:     agent.Span,
				Message:  fmt.Sprintf("output of agent `%s` is never consumed", agent.ID),
			})
		}
	}
}

// checkCycles runs cycle detection over the direct-reference subgraph.
// Subject edges buffer and are exempt.
func (w *Walker) checkCycles(sc *scope, g *ir.Graph) {
	adj := g.DirectAdjacency()
	nodes := util.SortedKeys(adj)

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)

	var stack []string
	var visit func(n string) bool

	visit = func(n string) bool {
		color[n] = gray
		stack = append(stack, n)

		for _, m := range adj[n] {
			switch color[m] {
			case white:
				if visit(m) {
					return true
				}
			case gray:
				// Trim the stack back to the cycle entry point.
				start := 0
				for i, s := range stack {
					if s == m {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, stack[start:]...), m)

				span := spanOfAgent(g, m)
				w.r.ReportError(report.CodeSemCycle, w.file, span,
					fmt.Sprintf("unbuffered cycle in agent topology: %s", strings.Join(cycle, " -> ")))
				return true
			}
		}

		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	for _, n := range nodes {
		if color[n] == white {
			if visit(n) {
				return
			}
		}
	}
}

func spanOfAgent(g *ir.Graph, id string) *report.TextSpan {
	if a, ok := g.ByID[id]; ok {
		return a.Span
	}

	return nil
}
