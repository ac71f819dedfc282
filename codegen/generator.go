package codegen

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kumeo/artifact"
	"kumeo/ir"
	"kumeo/render"
	"kumeo/report"
)

// Generator turns a validated program into an artifact tree: one directory
// per workflow, one subdirectory per agent, plus workflow-level deployment
// scaffolding.
type Generator struct {
	r      *report.Reporter
	log    *zap.Logger
	engine *render.Engine
	file   string
}

// NewGenerator builds a generator over a reporter and a template engine.
// file is the source path diagnostics are attributed to.
func NewGenerator(r *report.Reporter, engine *render.Engine, file string, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{r: r, log: log, engine: engine, file: file}
}

// Generate renders every workflow in the program into one tree.  Generation
// continues past per-agent failures so a single missing bundle does not mask
// others; the caller gates on the reporter before writing anything.
func (g *Generator) Generate(prog *ir.Program) *artifact.Tree {
	tree := artifact.NewTree()

	for _, wf := range prog.Workflows {
		g.generateWorkflow(tree, wf)
	}

	return tree
}

func (g *Generator) generateWorkflow(tree *artifact.Tree, wf *ir.Workflow) {
	g.log.Debug("generating workflow", zap.String("workflow", wf.Name))

	for _, agent := range wf.Agents {
		g.generateAgent(tree, wf, agent)
	}

	ctx := workflowContext(wf)
	files, err := g.engine.Render("workflow", ctx)
	if err != nil {
		g.reportRenderError(err, wf.Span)
		return
	}

	for rel, data := range files {
		g.addFile(tree, wf.Name+"/"+rel, data, wf.Span)
	}
}

func (g *Generator) generateAgent(tree *artifact.Tree, wf *ir.Workflow, agent *ir.Agent) {
	bundle := agentBundle(agent)
	if !g.engine.HasBundle(bundle) {
		g.r.ReportError(report.CodeGenTmplMissing, g.file, agent.Span,
			fmt.Sprintf("no `%s` template bundle for agent `%s` (kind %s, language %s)",
				bundle, agent.ID, agent.KindName, agent.Language))
		return
	}

	ctx := agentContext(wf, agent)
	files, err := g.engine.Render(bundle, ctx)
	if err != nil {
		g.reportRenderError(err, agent.Span)
		return
	}

	base := fmt.Sprintf("%s/agents/%s/", wf.Name, agent.ID)
	for rel, data := range files {
		g.addFile(tree, base+rel, data, agent.Span)
	}
}

// agentBundle maps an agent to its template bundle directory:
// `agents/<kind_lower>/<language>`, with custom agents sharing the
// `agents/custom` family.
func agentBundle(a *ir.Agent) string {
	kind := strings.ToLower(a.KindName)
	if a.CustomName != "" {
		kind = "custom"
	}

	return fmt.Sprintf("agents/%s/%s", kind, a.Language)
}

func (g *Generator) addFile(tree *artifact.Tree, path string, data []byte, span *report.TextSpan) {
	if err := tree.Add(path, data); err != nil {
		g.r.ReportError(report.CodeGenTmplRender, g.file, span, err.Error())
	}
}

func (g *Generator) reportRenderError(err error, span *report.TextSpan) {
	var missing *render.MissingBundleError
	if errors.As(err, &missing) {
		g.r.ReportError(report.CodeGenTmplMissing, g.file, span, missing.Error())
		return
	}

	g.r.ReportError(report.CodeGenTmplRender, g.file, span, err.Error())
}
