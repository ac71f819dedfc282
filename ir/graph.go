package ir

import "kumeo/report"

// Enumeration of topology edge kinds.
const (
	// EdgeSubject is a producer-consumer edge through a named broker
	// subject.  Subjects buffer, so these edges are exempt from cycle
	// detection.
	EdgeSubject = iota

	// EdgeDirect is a direct `<agent_id>.output` reference between two
	// agents with no intervening subject.
	EdgeDirect
)

// Edge is one producer-consumer edge of the topology graph.
type Edge struct {
	Kind int

	// From and To are agent ids; either may name a synthetic subject node
	// of the form `subject:<name>`.
	From, To string

	// Subject is the channel name for EdgeSubject edges.
	Subject string

	Span *report.TextSpan
}

// Graph is the directed producer-consumer graph of one workflow.
type Graph struct {
	ByID      map[string]*Agent
	BySubject map[string][]*Edge

	Edges []*Edge
}

// NewGraph creates an empty topology graph.
func NewGraph() *Graph {
	return &Graph{
		ByID:      make(map[string]*Agent),
		BySubject: make(map[string][]*Edge),
	}
}

// AddAgent registers an agent node.
func (g *Graph) AddAgent(a *Agent) {
	g.ByID[a.ID] = a
}

// AddEdge records an edge and indexes it by subject where applicable.
func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)

	if e.Kind == EdgeSubject && e.Subject != "" {
		g.BySubject[e.Subject] = append(g.BySubject[e.Subject], e)
	}
}

// DirectAdjacency returns the adjacency lists of the direct-reference
// subgraph: the only edges considered during cycle detection.
func (g *Graph) DirectAdjacency() map[string][]string {
	adj := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Kind == EdgeDirect {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}

	return adj
}
