package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphDirectAdjacency(t *testing.T) {
	g := NewGraph()
	g.AddAgent(&Agent{ID: "a"})
	g.AddAgent(&Agent{ID: "b"})

	g.AddEdge(&Edge{Kind: EdgeDirect, From: "a", To: "b"})
	g.AddEdge(&Edge{Kind: EdgeSubject, From: "b", To: "subject:s", Subject: "s"})

	adj := g.DirectAdjacency()
	assert.Equal(t, []string{"b"}, adj["a"])
	assert.NotContains(t, adj, "b")
}

func TestGraphSubjectIndex(t *testing.T) {
	g := NewGraph()
	g.AddEdge(&Edge{Kind: EdgeSubject, From: "a", To: "subject:s", Subject: "s"})
	g.AddEdge(&Edge{Kind: EdgeSubject, From: "subject:s", To: "b", Subject: "s"})

	require.Len(t, g.BySubject["s"], 2)
	assert.Len(t, g.Edges, 2)
}

func TestWorkflowEndpointLookup(t *testing.T) {
	wf := &Workflow{
		Targets: []*Endpoint{
			{Binding: "target.1", Subject: "out"},
			{Binding: "target.2", Subject: "audit"},
		},
	}

	require.NotNil(t, wf.Target("target"))
	assert.Equal(t, "out", wf.Target("target").Subject)
	assert.Equal(t, "audit", wf.Target("target.2").Subject)
	assert.Nil(t, wf.Target("target.3"))
	assert.Nil(t, wf.Source("source"))
}
