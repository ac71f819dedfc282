package codegen

import (
	"fmt"

	"kumeo/ir"
)

// Broker and runtime wiring baked into every rendered agent.
const (
	brokerURL     = "nats://nats:4222"
	socketPathFmt = "/var/run/kumeo/%s.sock"
)

// agentContext assembles the render context for one agent bundle.  The keys
// form the contract the templates are written against.
func agentContext(wf *ir.Workflow, a *ir.Agent) map[string]interface{} {
	resources := map[string]interface{}{
		"cpu":    a.Resources.CPU,
		"memory": a.Resources.Memory,
	}
	if a.Resources.GPU != "" {
		resources["gpu"] = a.Resources.GPU
	}

	ctx := map[string]interface{}{
		"workflow_name":   wf.Name,
		"agent_id":        a.ID,
		"agent_kind":      a.KindName,
		"target_language": a.Language,
		"input_subjects":  subjectsOrEmpty(a.InputSubjects),
		"output_subjects": subjectsOrEmpty(a.OutputSubjects),
		"config":          a.Config,
		"resources":       resources,
		"runtime": map[string]interface{}{
			"socket_path": fmt.Sprintf(socketPathFmt, a.ID),
			"broker_url":  brokerURL,
		},
		"registry": map[string]interface{}{
			"images": map[string]interface{}{a.ID: wf.Name + "/" + a.ID},
			"tags":   map[string]interface{}{a.ID: "latest"},
		},
	}

	if a.CustomName != "" {
		ctx["custom_name"] = a.CustomName
	}

	return ctx
}

// workflowContext assembles the render context for the workflow-level bundle.
func workflowContext(wf *ir.Workflow) map[string]interface{} {
	agents := make([]map[string]interface{}, 0, len(wf.Agents))
	for _, a := range wf.Agents {
		entry := map[string]interface{}{
			"id":       a.ID,
			"kind":     a.KindName,
			"language": a.Language,
			"resources": map[string]interface{}{
				"cpu":    a.Resources.CPU,
				"memory": a.Resources.Memory,
			},
		}
		if a.Resources.GPU != "" {
			entry["resources"].(map[string]interface{})["gpu"] = a.Resources.GPU
		}
		agents = append(agents, entry)
	}

	ctx := map[string]interface{}{
		"workflow_name": wf.Name,
		"agents":        agents,
		"sources":       endpointList(wf.Sources),
		"targets":       endpointList(wf.Targets),
		"contexts":      endpointList(wf.Contexts),
		"runtime": map[string]interface{}{
			"broker_url": brokerURL,
		},
	}

	if wf.Monitor != nil {
		ctx["monitor"] = wf.Monitor
	}

	if wf.Deployment != nil {
		dep := map[string]interface{}{
			"namespace": wf.Deployment.Namespace,
			"replicas":  wf.Deployment.Replicas,
		}
		if len(wf.Deployment.Env) > 0 {
			dep["env"] = wf.Deployment.Env
		}
		ctx["deployment"] = dep
	}

	return ctx
}

func endpointList(eps []*ir.Endpoint) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(eps))
	for _, ep := range eps {
		entry := map[string]interface{}{
			"kind":    ep.Kind,
			"subject": ep.Subject,
			"binding": ep.Binding,
		}
		if ep.Query != "" {
			entry["query"] = ep.Query
		}
		if len(ep.Options) > 0 {
			entry["options"] = ep.Options
		}
		out = append(out, entry)
	}

	return out
}

func subjectsOrEmpty(subjects []string) []string {
	if subjects == nil {
		return []string{}
	}

	return subjects
}
