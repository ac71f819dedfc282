package ir

import "kumeo/report"

// Program is the validated intermediate representation of one source file:
// the set of workflows ready for code generation.  Subworkflows do not appear
// here; integrations splice their agents into the host workflows during
// semantic analysis.
type Program struct {
	Workflows []*Workflow
}

// Workflow is a validated workflow: resolved endpoints, ordered agents, and
// the topology graph built over them.
type Workflow struct {
	Name string
	Span *report.TextSpan

	Sources  []*Endpoint
	Targets  []*Endpoint
	Contexts []*Endpoint

	// Agents holds preprocessors first, then the main agent list, both in
	// declaration order.  Spliced subworkflow agents follow the host agents.
	Agents []*Agent

	Monitor    map[string]interface{}
	Deployment *Deployment

	Graph *Graph
}

// Target returns the declared target endpoint bound to the given name, where
// the n-th target answers to `target.<n>` and the first also to `target`.
func (w *Workflow) Target(name string) *Endpoint {
	return endpointByName(w.Targets, name, "target")
}

// Source returns the declared source endpoint bound to the given name.
func (w *Workflow) Source(name string) *Endpoint {
	return endpointByName(w.Sources, name, "source")
}

func endpointByName(eps []*Endpoint, name, prefix string) *Endpoint {
	if len(eps) == 0 {
		return nil
	}

	if name == prefix {
		return eps[0]
	}

	for _, ep := range eps {
		if ep.Binding == name {
			return ep
		}
	}

	return nil
}

// Endpoint is a validated source, target, or context declaration.
type Endpoint struct {
	// Kind is the constructor name: NATS, HTTP, Kafka, MQTT, File,
	// KnowledgeBase, BayesianNetwork, Database, or Custom.
	Kind string
	Span *report.TextSpan

	// Binding is the numbered symbol the endpoint answers to: `source.1`,
	// `source.2`, `target.1`, `context.1`, and so on.  The bare role name
	// resolves to the first endpoint of that role.
	Binding string

	// Subject is the first constructor argument: the topic, endpoint path,
	// file path, or connection string.
	Subject string

	// Query is the second argument of a Database endpoint.
	Query string

	// Options holds any named constructor options.
	Options map[string]interface{}
}

// Agent is a validated, typed agent record.
type Agent struct {
	ID   string
	Span *report.TextSpan

	// Kind is one of the ast.Agent* constants; KindName is its canonical
	// constructor name, or the custom name for custom agents.
	Kind       int
	KindName   string
	CustomName string

	// Language is the assigned target language tag.
	Language string

	// InputSubjects and OutputSubjects are the fully resolved subject names
	// the agent consumes and produces.  No symbolic paths remain.
	InputSubjects  []string
	OutputSubjects []string

	// Config is the validated configuration object with references resolved
	// to subject strings.
	Config map[string]interface{}

	Resources *Resources
}

// Resources is an agent's resource profile.
type Resources struct {
	CPU    string
	Memory string
	GPU    string
}

// Deployment is a workflow's validated deployment section.
type Deployment struct {
	Namespace string
	Replicas  int
	Resources *Resources
	Env       map[string]string

	// Languages maps custom agent kind names to language tags.
	Languages map[string]string
}
