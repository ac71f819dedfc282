package ast

import "kumeo/report"

// Node represents any node in the AST.
type Node interface {
	// Span returns the region of source text the node covers.
	Span() *report.TextSpan
}

// NodeBase is the base struct embedded in all AST nodes.
type NodeBase struct {
	span *report.TextSpan
}

// NewNodeBase creates a new node base over the given span.
func NewNodeBase(span *report.TextSpan) NodeBase {
	return NodeBase{span: span}
}

func (nb *NodeBase) Span() *report.TextSpan {
	return nb.span
}

// -----------------------------------------------------------------------------

// Program is the root of the AST: the ordered list of top level items in one
// source file.
type Program struct {
	File  string
	Items []Item
}

// Item represents a top level item: a workflow, subworkflow, or integration.
type Item interface {
	Node
	item()
}

// Workflow represents a named workflow declaration.
type Workflow struct {
	NodeBase

	Name     string
	NameSpan *report.TextSpan

	// Sources, Targets, and Contexts hold the declared endpoint constructor
	// calls.  Single-value and array forms both land here.
	Sources  []Value
	Targets  []Value
	Contexts []Value

	// Preprocessors run before Agents; their ids share the workflow scope.
	Preprocessors []*Agent
	Agents        []*Agent

	Monitor    *Object
	Deployment *Object

	// ResourceMaps holds the `config`, `data`, `models`, and `schemas`
	// sections, whose keys become referencable symbols.
	ResourceMaps []*ResourceMap
}

func (w *Workflow) item() {}

// Resource returns the resource map section with the given name, or nil.
func (w *Workflow) Resource(name string) *ResourceMap {
	for _, rm := range w.ResourceMaps {
		if rm.Name == name {
			return rm
		}
	}

	return nil
}

// ResourceMap is a workflow section declaring a named map of resources, such
// as `models: { fraud: "models/fraud.onnx" }`.
type ResourceMap struct {
	NodeBase

	Name     string
	NameSpan *report.TextSpan

	Object *Object
}

// Subworkflow represents a reusable workflow fragment with declared inputs
// and outputs.
type Subworkflow struct {
	NodeBase

	Name     string
	NameSpan *report.TextSpan

	Inputs  []*NamedString
	Outputs []*NamedString

	Contexts []Value
	Agents   []*Agent
}

func (s *Subworkflow) item() {}

// NamedString is a string element carrying its own span, used for subworkflow
// input and output name lists.
type NamedString struct {
	NodeBase
	Value string
}

// Integration represents a binding that splices a subworkflow into a host
// workflow.
type Integration struct {
	NodeBase

	Workflow     string
	WorkflowSpan *report.TextSpan

	Use     string
	UseSpan *report.TextSpan

	InputMapping  []*MappingEntry
	OutputMapping []*MappingEntry
}

func (i *Integration) item() {}

// MappingEntry binds one subworkflow input or output name to a path in the
// host workflow.
type MappingEntry struct {
	NodeBase

	Name     string
	NameSpan *report.TextSpan

	Path Value
}

// -----------------------------------------------------------------------------

// Enumeration of agent kinds.
const (
	AgentLLM = iota
	AgentMLModel
	AgentBayesianNetwork
	AgentDecisionMatrix
	AgentRouter
	AgentDataProcessor
	AgentHumanReview
	AgentAggregator
	AgentRuleEngine
	AgentDataNormalizer
	AgentMissingValueHandler
	AgentCustom
)

// agentKindNames maps agent kind constructor lexemes to kinds.  `HumanInLoop`
// is an accepted alias for `HumanReview`.
var agentKindNames = map[string]int{
	"LLM":                 AgentLLM,
	"MLModel":             AgentMLModel,
	"BayesianNetwork":     AgentBayesianNetwork,
	"DecisionMatrix":      AgentDecisionMatrix,
	"Router":              AgentRouter,
	"DataProcessor":       AgentDataProcessor,
	"HumanReview":         AgentHumanReview,
	"HumanInLoop":         AgentHumanReview,
	"Aggregator":          AgentAggregator,
	"RuleEngine":          AgentRuleEngine,
	"DataNormalizer":      AgentDataNormalizer,
	"MissingValueHandler": AgentMissingValueHandler,
}

// AgentKindOf looks up the agent kind named by a constructor lexeme.
func AgentKindOf(name string) (int, bool) {
	kind, ok := agentKindNames[name]
	return kind, ok
}

// AgentKindName returns the canonical constructor name of an agent kind.  For
// AgentCustom the caller should use the agent's CustomName instead.
func AgentKindName(kind int) string {
	switch kind {
	case AgentLLM:
		return "LLM"
	case AgentMLModel:
		return "MLModel"
	case AgentBayesianNetwork:
		return "BayesianNetwork"
	case AgentDecisionMatrix:
		return "DecisionMatrix"
	case AgentRouter:
		return "Router"
	case AgentDataProcessor:
		return "DataProcessor"
	case AgentHumanReview:
		return "HumanReview"
	case AgentAggregator:
		return "Aggregator"
	case AgentRuleEngine:
		return "RuleEngine"
	case AgentDataNormalizer:
		return "DataNormalizer"
	case AgentMissingValueHandler:
		return "MissingValueHandler"
	default:
		return "Custom"
	}
}

// Agent represents one agent declaration inside a workflow or subworkflow.
type Agent struct {
	NodeBase

	Kind int

	// CustomName is the user supplied kind name for AgentCustom agents.
	CustomName string

	// ID is empty when the declaration carries no `id:` argument; the
	// semantic analyzer assigns one.
	ID     string
	IDSpan *report.TextSpan

	Args []*Argument
}

// Named returns the value of the named argument with the given name, or nil
// if no such argument exists.
func (a *Agent) Named(name string) Value {
	for _, arg := range a.Args {
		if arg.Name == name {
			return arg.Value
		}
	}

	return nil
}

// NamedArg returns the full argument record for the given name.
func (a *Agent) NamedArg(name string) *Argument {
	for _, arg := range a.Args {
		if arg.Name == name {
			return arg
		}
	}

	return nil
}
