package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kumeo/ir"
	"kumeo/report"
	"kumeo/syntax"
)

func analyze(t *testing.T, src string) (*ir.Program, *report.Reporter) {
	t.Helper()

	r := report.NewReporter(report.LogLevelSilent)
	prog := syntax.NewParser(r, "test.kumeo", []rune(src)).Parse()
	require.False(t, r.AnyErrors(), "parse must succeed before analysis")

	return NewWalker(r, nil, prog, nil).Walk(), r
}

func codes(r *report.Reporter) []string {
	var out []string
	for _, d := range r.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func TestWalkMinimalWorkflow(t *testing.T) {
	prog, r := analyze(t, `
workflow W {
	source: NATS("in")
	target: NATS("out")
	agents: [
		LLM(id: "a", engine: "x", prompt: "p", input: "source", output: "out"),
	]
}
`)

	assert.False(t, r.AnyErrors())
	require.Len(t, prog.Workflows, 1)

	wf := prog.Workflows[0]
	assert.Equal(t, "W", wf.Name)
	require.Len(t, wf.Agents, 1)

	a := wf.Agents[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "LLM", a.KindName)
	assert.Equal(t, ir.LangSystems, a.Language)
	assert.Equal(t, []string{"in"}, a.InputSubjects)
	assert.Equal(t, []string{"out"}, a.OutputSubjects)

	require.NotNil(t, a.Resources)
	assert.Equal(t, "100m", a.Resources.CPU)
	assert.Equal(t, "256Mi", a.Resources.Memory)

	engine, ok := a.Config["engine"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "x", engine["name"])
	assert.Equal(t, "p", a.Config["prompt"])
}

func TestWalkAutoIDs(t *testing.T) {
	prog, r := analyze(t, `
workflow W {
	agents: [
		LLM(engine: "x", prompt: "p", output: "a.out"),
		LLM(engine: "x", prompt: "p", output: "b.out"),
		MLModel(model: "m.onnx", input: "a.out"),
	]
}
`)

	assert.False(t, r.AnyErrors())
	wf := prog.Workflows[0]
	require.Len(t, wf.Agents, 3)
	assert.Equal(t, "llm_1", wf.Agents[0].ID)
	assert.Equal(t, "llm_2", wf.Agents[1].ID)
	assert.Equal(t, "mlmodel_1", wf.Agents[2].ID)
}

func TestWalkDuplicateAgentID(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: [
		LLM(id: "a", engine: "x", prompt: "p"),
		LLM(id: "a", engine: "x", prompt: "p"),
	]
}
`)

	require.True(t, r.AnyErrors())
	assert.Contains(t, codes(r), report.CodeSemDup)
	assert.Contains(t, r.Diagnostics()[0].Message, "duplicate agent id `a`")
}

func TestWalkMissingRequiredArg(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: [
		LLM(id: "a", engine: "x"),
	]
}
`)

	require.True(t, r.AnyErrors())
	assert.Equal(t, report.CodeSemShape, r.Diagnostics()[0].Code)
	assert.Contains(t, r.Diagnostics()[0].Message, "missing required `prompt` or `prompt_template`")
}

func TestWalkArgShapeMismatch(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: [
		LLM(id: "a", engine: "x", prompt: 42),
	]
}
`)

	require.True(t, r.AnyErrors())
	assert.Equal(t, report.CodeSemShape, r.Diagnostics()[0].Code)
	assert.Contains(t, r.Diagnostics()[0].Message, "`prompt` must be a string")
}

func TestWalkDirectCycle(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: [
		Custom("Echo", id: "a", input: b.output, output: "a.done"),
		Custom("Echo", id: "b", input: a.output, output: "b.done"),
	]
}
`)

	require.True(t, r.AnyErrors())
	assert.Contains(t, codes(r), report.CodeSemCycle)

	var msg string
	for _, d := range r.Diagnostics() {
		if d.Code == report.CodeSemCycle {
			msg = d.Message
		}
	}
	assert.Contains(t, msg, "unbuffered cycle in agent topology")
}

func TestWalkSubjectBufferedCycleIsLegal(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: [
		Custom("Echo", id: "a", input: "loop.in", output: "loop.mid"),
		Custom("Echo", id: "b", input: "loop.mid", output: "loop.in"),
	]
}
`)

	assert.False(t, r.AnyErrors())
}

func TestWalkUnresolvedAgentReference(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	target: NATS("out")
	agents: [
		Custom("Echo", id: "a", input: ghost.output, output: "out"),
	]
}
`)

	require.True(t, r.AnyErrors())
	assert.Equal(t, report.CodeSemRef, r.Diagnostics()[0].Code)
	assert.Contains(t, r.Diagnostics()[0].Message, "undeclared agent `ghost`")
}

func TestWalkEndpointResolution(t *testing.T) {
	prog, r := analyze(t, `
workflow W {
	source: [NATS("first"), Kafka("second")]
	target: NATS("sink")
	agents: [
		Custom("Echo", id: "a", input: "source.2", output: target),
	]
}
`)

	assert.False(t, r.AnyErrors())
	a := prog.Workflows[0].Agents[0]
	assert.Equal(t, []string{"second"}, a.InputSubjects)
	assert.Equal(t, []string{"sink"}, a.OutputSubjects)
}

func TestWalkEndpointErrors(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	source: Pigeon("coop")
	target: Database("pg://db")
	agents: []
}
`)

	require.True(t, r.AnyErrors())
	assert.Equal(t, 2, r.ErrorCount())
	assert.Contains(t, r.Diagnostics()[0].Message, "unknown source constructor `Pigeon`")
	assert.Contains(t, r.Diagnostics()[1].Message, "`Database` requires 2 argument(s)")
}

func TestWalkResourceMapResolution(t *testing.T) {
	prog, r := analyze(t, `
workflow W {
	agents: [
		MLModel(id: "m", model: models.risk, input: "tx"),
	]
	models: { risk: "models/risk.onnx" }
}
`)

	assert.False(t, r.AnyErrors())
	a := prog.Workflows[0].Agents[0]
	assert.Equal(t, "models/risk.onnx", a.Config["model"])
}

func TestWalkLanguageAssignment(t *testing.T) {
	prog, r := analyze(t, `
workflow W {
	agents: [
		LLM(id: "judge", engine: "x", prompt: "p", output: "judged"),
		MLModel(id: "scorer", model: "risk.onnx", input: "judged"),
		Custom("Widget", id: "w", input: "judged", output: "done"),
	]
	deployment: { languages: { Widget: "python" } }
}
`)

	assert.False(t, r.AnyErrors())
	agents := prog.Workflows[0].Agents
	require.Len(t, agents, 3)
	assert.Equal(t, ir.LangSystems, agents[0].Language)
	assert.Equal(t, ir.LangScripting, agents[1].Language)
	assert.Equal(t, ir.LangScripting, agents[2].Language)
	assert.Equal(t, "Widget", agents[2].KindName)
}

func TestWalkDeploymentResources(t *testing.T) {
	prog, r := analyze(t, `
workflow W {
	agents: [
		LLM(id: "a", engine: "x", prompt: "p"),
		LLM(id: "b", engine: "x", prompt: "p", resources: { cpu: "4" }),
	]
	deployment: { namespace: "prod", replicas: 3, resources: { cpu: "2", memory: "1Gi" } }
}
`)

	assert.False(t, r.AnyErrors())
	wf := prog.Workflows[0]

	require.NotNil(t, wf.Deployment)
	assert.Equal(t, "prod", wf.Deployment.Namespace)
	assert.Equal(t, 3, wf.Deployment.Replicas)

	assert.Equal(t, "2", wf.Agents[0].Resources.CPU)
	assert.Equal(t, "1Gi", wf.Agents[0].Resources.Memory)

	// Per-agent settings win over the deployment profile.
	assert.Equal(t, "4", wf.Agents[1].Resources.CPU)
	assert.Equal(t, "1Gi", wf.Agents[1].Resources.Memory)
}

func TestWalkDeploymentReplicasMustBePositive(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: []
	deployment: { replicas: 0 }
}
`)

	require.True(t, r.AnyErrors())
	assert.Contains(t, r.Diagnostics()[0].Message, "`replicas` must be a positive integer")
}

func TestWalkTemperatureAdvisoryWarning(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: [
		LLM(id: "a", engine: "x", prompt: "p", temperature: 3),
	]
}
`)

	assert.False(t, r.AnyErrors())
	require.Equal(t, 1, r.WarningCount())
	assert.Equal(t, report.CodeWarnRange, r.Diagnostics()[0].Code)
}

func TestWalkUnknownKeyWarning(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: [
		LLM(id: "a", engine: "x", prompt: "p", blaster: true),
	]
}
`)

	assert.False(t, r.AnyErrors())
	require.Equal(t, 1, r.WarningCount())
	assert.Equal(t, report.CodeWarnUnknown, r.Diagnostics()[0].Code)
	assert.Contains(t, r.Diagnostics()[0].Message, "does not recognize `blaster`")
}

func TestWalkUnconsumedOutputWarning(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	target: NATS("out")
	agents: [
		Custom("Echo", id: "kept", input: "raw", output: "out"),
		Custom("Echo", id: "orphan", input: "raw", output: "nowhere"),
	]
}
`)

	assert.False(t, r.AnyErrors())
	require.Equal(t, 1, r.WarningCount())
	d := r.Diagnostics()[0]
	assert.Equal(t, report.CodeWarnUnused, d.Code)
	assert.Contains(t, d.Message, "`orphan`")
}

func TestWalkIntegrationSplice(t *testing.T) {
	prog, r := analyze(t, `
subworkflow Scoring {
	input: ["tx"]
	output: ["score"]
	agents: [
		MLModel(id: "m", model: "risk.onnx", input: input.tx, output: output.score),
	]
}

workflow Host {
	source: NATS("in")
	target: NATS("out")
	agents: []
}

integration {
	workflow: Host,
	use: Scoring,
	input: { tx: "source" },
	output: { score: "target" },
}
`)

	assert.False(t, r.AnyErrors())
	wf := prog.Workflows[0]
	require.Len(t, wf.Agents, 1)

	spliced := wf.Agents[0]
	assert.Equal(t, "Scoring_m", spliced.ID)
	assert.Equal(t, []string{"in"}, spliced.InputSubjects)
	assert.Equal(t, []string{"out"}, spliced.OutputSubjects)
}

func TestWalkIntegrationMissingBinding(t *testing.T) {
	_, r := analyze(t, `
subworkflow Sub {
	input: ["x", "y"]
	agents: [
		Custom("Echo", id: "e", input: input.x, output: "done"),
	]
}

workflow Host {
	source: NATS("in")
	agents: []
}

integration {
	workflow: Host,
	use: Sub,
	input: { x: "source" },
}
`)

	require.True(t, r.AnyErrors())
	assert.Contains(t, codes(r), report.CodeSemInteg)

	var msg string
	for _, d := range r.Diagnostics() {
		if d.Code == report.CodeSemInteg {
			msg = d.Message
		}
	}
	assert.Contains(t, msg, "missing a binding for input `y`")
}

func TestWalkIntegrationUnknownName(t *testing.T) {
	_, r := analyze(t, `
subworkflow Sub {
	input: ["x"]
	agents: [
		Custom("Echo", id: "e", input: input.x, output: "done"),
	]
}

workflow Host {
	agents: []
}

integration {
	workflow: Host,
	use: Sub,
	input: { x: "topic", z: "topic" },
}
`)

	require.True(t, r.AnyErrors())
	found := false
	for _, d := range r.Diagnostics() {
		if d.Code == report.CodeSemInteg && d.Message == "subworkflow `Sub` declares no input `z`" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestWalkIntegrationUndeclaredWorkflow(t *testing.T) {
	_, r := analyze(t, `
subworkflow Sub {
	output: ["score"]
	agents: [
		Custom("Echo", id: "e", input: "tx", output: output.score),
	]
}

workflow Host {
	agents: []
}

integration {
	workflow: Ghost,
	use: Sub,
	output: { score: "target" },
}
`)

	require.True(t, r.AnyErrors())
	assert.Contains(t, r.Diagnostics()[0].Message, "undeclared workflow `Ghost`")
}

func TestWalkPreprocessorsPrecedeAgents(t *testing.T) {
	prog, r := analyze(t, `
workflow W {
	preprocessors: [
		DataNormalizer(id: "norm", config: { method: "minmax" }, input: "raw", output: "clean"),
	]
	agents: [
		MLModel(id: "m", model: "risk.onnx", input: "clean"),
	]
}
`)

	assert.False(t, r.AnyErrors())
	wf := prog.Workflows[0]
	require.Len(t, wf.Agents, 2)
	assert.Equal(t, "norm", wf.Agents[0].ID)
	assert.Equal(t, "m", wf.Agents[1].ID)
}

func TestWalkMonitorSection(t *testing.T) {
	prog, r := analyze(t, `
workflow W {
	agents: []
	monitor: { enabled: true, interval: "30s" }
}
`)

	assert.False(t, r.AnyErrors())
	wf := prog.Workflows[0]
	require.NotNil(t, wf.Monitor)
	assert.Equal(t, true, wf.Monitor["enabled"])
	assert.Equal(t, "30s", wf.Monitor["interval"])
}

func TestWalkDuplicateWorkflowName(t *testing.T) {
	_, r := analyze(t, `
workflow W {
	agents: []
}

workflow W {
	agents: []
}
`)

	require.True(t, r.AnyErrors())
	assert.Contains(t, r.Diagnostics()[0].Message, "duplicate workflow name `W`")
}
