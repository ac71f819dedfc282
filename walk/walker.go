package walk

import (
	"fmt"

	"go.uber.org/zap"

	"kumeo/ast"
	"kumeo/ir"
	"kumeo/report"
)

// Walker runs semantic analysis over a parsed program: scope building,
// reference resolution, shape checking, topology validation, integration
// expansion, and language assignment.  Diagnostics go to the reporter; the
// caller gates code generation on AnyErrors.
type Walker struct {
	r      *report.Reporter
	log    *zap.Logger
	file   string
	policy ir.LanguagePolicy

	prog *ast.Program

	workflows    map[string]*ast.Workflow
	subworkflows map[string]*ast.Subworkflow

	// workflowOrder preserves declaration order for deterministic output.
	workflowOrder []*ast.Workflow
}

// NewWalker creates a walker for the given program.  A nil logger disables
// tracing.
func NewWalker(r *report.Reporter, log *zap.Logger, prog *ast.Program, policy ir.LanguagePolicy) *Walker {
	if log == nil {
		log = zap.NewNop()
	}
	if policy == nil {
		policy = ir.DefaultLanguagePolicy()
	}

	return &Walker{
		r:            r,
		log:          log,
		file:         prog.File,
		policy:       policy,
		prog:         prog,
		workflows:    make(map[string]*ast.Workflow),
		subworkflows: make(map[string]*ast.Subworkflow),
	}
}

// Walk analyzes the program and returns the validated IR.  The IR is only
// meaningful if no errors were reported.
func (w *Walker) Walk() *ir.Program {
	w.indexItems()

	// Subworkflows are validated standalone so their own shape errors are
	// reported even when no integration references them.
	for _, item := range w.prog.Items {
		if sub, ok := item.(*ast.Subworkflow); ok {
			w.validateSubworkflow(sub)
		}
	}

	// Integration expansion splices subworkflow agents into host workflows
	// before those workflows are analyzed, so the merged graph is validated
	// as a whole.
	spliced := w.expandIntegrations()

	prog := &ir.Program{}
	for _, wf := range w.workflowOrder {
		w.log.Debug("analyzing workflow", zap.String("workflow", wf.Name))
		prog.Workflows = append(prog.Workflows, w.walkWorkflow(wf, spliced[wf.Name]))
	}

	return prog
}

// indexItems collects top level items by name, reporting duplicates and
// malformed identifiers.
func (w *Walker) indexItems() {
	for _, item := range w.prog.Items {
		switch it := item.(type) {
		case *ast.Workflow:
			w.checkIdent(it.Name, it.NameSpan)

			if _, ok := w.workflows[it.Name]; ok {
				w.r.ReportError(report.CodeSemDup, w.file, it.NameSpan,
					fmt.Sprintf("duplicate workflow name `%s`", it.Name))
				continue
			}

			w.workflows[it.Name] = it
			w.workflowOrder = append(w.workflowOrder, it)
		case *ast.Subworkflow:
			w.checkIdent(it.Name, it.NameSpan)

			if _, ok := w.subworkflows[it.Name]; ok {
				w.r.ReportError(report.CodeSemDup, w.file, it.NameSpan,
					fmt.Sprintf("duplicate subworkflow name `%s`", it.Name))
				continue
			}

			w.subworkflows[it.Name] = it
		}
	}
}

// checkIdent validates the identifier charset: a letter or underscore
// followed by letters, digits, and underscores.
func (w *Walker) checkIdent(name string, span *report.TextSpan) {
	valid := name != ""
	for i, c := range name {
		switch {
		case c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
		case i > 0 && '0' <= c && c <= '9':
		default:
			valid = false
		}
	}

	if !valid {
		w.r.ReportError(report.CodeSemRef, w.file, span,
			fmt.Sprintf("malformed identifier `%s`", name))
	}
}

// walkWorkflow runs the per-workflow passes and produces the validated
// workflow record.
func (w *Walker) walkWorkflow(wf *ast.Workflow, extraAgents []*ast.Agent) *ir.Workflow {
	sc := w.buildWorkflowScope(wf, extraAgents)

	out := &ir.Workflow{
		Name:     wf.Name,
		Span:     wf.Span(),
		Sources:  sc.sources,
		Targets:  sc.targets,
		Contexts: sc.contexts,
		Graph:    ir.NewGraph(),
	}

	out.Monitor = w.checkMonitor(wf.Monitor)
	out.Deployment = w.checkDeployment(wf.Deployment)

	for _, agent := range sc.order {
		rec := w.walkAgent(sc, agent)
		w.assignAgent(rec, out.Deployment)
		out.Agents = append(out.Agents, rec)
		out.Graph.AddAgent(rec)
	}

	w.buildTopology(sc, out)
	w.checkCycles(sc, out.Graph)
	w.checkUnused(sc, out)

	return out
}
