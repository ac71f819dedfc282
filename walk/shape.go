package walk

import (
	"fmt"

	"kumeo/ast"
	"kumeo/ir"
	"kumeo/report"
	"kumeo/util"
)

// argCheck validates one argument value, returning an empty string on
// success or a description of the expected shape.
type argCheck func(v ast.Value) string

func anyValue(ast.Value) string { return "" }

// Paths pass the string checks: references resolve to strings.
func isString(v ast.Value) string {
	switch v.(type) {
	case *ast.StringLit, *ast.PathExpr:
		return ""
	}
	return "a string"
}

func isNumber(v ast.Value) string {
	if _, ok := v.(*ast.NumberLit); !ok {
		return "a number"
	}
	return ""
}

func isObject(v ast.Value) string {
	if _, ok := v.(*ast.Object); !ok {
		return "an object"
	}
	return ""
}

func isStringOrObject(v ast.Value) string {
	switch v.(type) {
	case *ast.StringLit, *ast.PathExpr, *ast.Object:
		return ""
	}
	return "a string or object"
}

func isArrayOrString(v ast.Value) string {
	switch v.(type) {
	case *ast.Array, *ast.StringLit, *ast.PathExpr:
		return ""
	}
	return "an array or string"
}

// requiredKey is one required configuration key: any one of Names satisfies
// the requirement.
type requiredKey struct {
	names []string
	check argCheck
}

// kindShape is the closed configuration shape of one agent kind.
type kindShape struct {
	required []requiredKey
	optional map[string]argCheck

	// open admits arbitrary extra keys without warnings.
	open bool
}

// bindingArgs are accepted on every kind and validated as bindings or as the
// resource profile, not as configuration keys.
var bindingArgs = map[string]bool{
	"id":        true,
	"input":     true,
	"output":    true,
	"context":   true,
	"resources": true,
}

var kindShapes = map[int]*kindShape{
	ast.AgentLLM: {
		required: []requiredKey{
			{names: []string{"engine", "provider"}, check: isStringOrObject},
			{names: []string{"prompt", "prompt_template"}, check: isString},
		},
		optional: map[string]argCheck{
			"temperature":   isNumber,
			"max_tokens":    isNumber,
			"output_schema": anyValue,
		},
	},
	ast.AgentMLModel: {
		required: []requiredKey{
			{names: []string{"model"}, check: checkModel},
			{names: []string{"input"}, check: anyValue},
		},
		optional: map[string]argCheck{
			"output_schema": anyValue,
			"config":        isObject,
		},
	},
	ast.AgentBayesianNetwork: {
		required: []requiredKey{
			{names: []string{"network", "file"}, check: isString},
		},
		optional: map[string]argCheck{},
	},
	ast.AgentDataProcessor: {
		required: []requiredKey{
			{names: []string{"input"}, check: anyValue},
			{names: []string{"config"}, check: isObject},
		},
		optional: map[string]argCheck{
			"schema": anyValue,
		},
	},
	ast.AgentRouter: {
		required: []requiredKey{
			{names: []string{"input"}, check: anyValue},
			{names: []string{"rules"}, check: isObject},
		},
		optional: map[string]argCheck{
			"output_schema": anyValue,
		},
	},
	ast.AgentDecisionMatrix: {
		required: []requiredKey{
			{names: []string{"input"}, check: anyValue},
			{names: []string{"rules"}, check: isArrayOrString},
		},
		optional: map[string]argCheck{
			"on_failure": isObject,
		},
	},
	ast.AgentHumanReview: {
		required: []requiredKey{
			{names: []string{"input"}, check: anyValue},
			{names: []string{"config"}, check: checkReviewConfig},
		},
		optional: map[string]argCheck{
			"when":     anyValue,
			"timeout":  anyValue,
			"timeouts": anyValue,
		},
	},
	ast.AgentAggregator: {
		required: []requiredKey{
			{names: []string{"method"}, check: isString},
			{names: []string{"weights"}, check: isObject},
		},
		optional: map[string]argCheck{
			"output_mapping": anyValue,
		},
	},
	ast.AgentRuleEngine: {
		required: []requiredKey{
			{names: []string{"rules"}, check: isString},
			{names: []string{"input"}, check: anyValue},
		},
		optional: map[string]argCheck{},
	},
	ast.AgentDataNormalizer: {
		required: []requiredKey{
			{names: []string{"config"}, check: isStringOrObject},
		},
		optional: map[string]argCheck{},
	},
	ast.AgentMissingValueHandler: {
		required: []requiredKey{
			{names: []string{"strategy"}, check: isString},
		},
		optional: map[string]argCheck{},
	},
	ast.AgentCustom: {
		open: true,
	},
}

// checkModel validates the MLModel `model` argument: a string path or an
// object naming at least the model file.
func checkModel(v ast.Value) string {
	switch val := v.(type) {
	case *ast.StringLit, *ast.PathExpr:
		return ""
	case *ast.Object:
		if val.Get("file") == nil {
			return "an object with a `file` entry"
		}
		return ""
	}

	return "a string or object"
}

// checkReviewConfig validates the HumanReview `config` argument, which must
// declare the review surface.
func checkReviewConfig(v ast.Value) string {
	obj, ok := v.(*ast.Object)
	if !ok {
		return "an object"
	}

	if obj.Get("ui") == nil && obj.Get("interface") == nil {
		return "an object with a `ui` or `interface` entry"
	}

	return ""
}

// checkShape validates one agent's configuration against its kind's shape.
func (w *Walker) checkShape(sc *scope, agent *ast.Agent) {
	shape := kindShapes[agent.Kind]

	displayName := ast.AgentKindName(agent.Kind)
	if agent.Kind == ast.AgentCustom {
		displayName = "Custom(" + agent.CustomName + ")"
	}

	for _, req := range shape.required {
		var found *ast.Argument
		for _, name := range req.names {
			if arg := agent.NamedArg(name); arg != nil {
				found = arg
				break
			}
		}

		if found == nil {
			w.r.ReportError(report.CodeSemShape, w.file, agent.Span(),
				fmt.Sprintf("`%s` agent is missing required `%s`", displayName, joinNames(req.names)))
			continue
		}

		if msg := req.check(found.Value); msg != "" {
			w.r.ReportError(report.CodeSemShape, w.file, found.Value.Span(),
				fmt.Sprintf("`%s` must be %s, found %s", found.Name, msg, valueKindName(found.Value)))
		}
	}

	for _, arg := range agent.Args {
		if arg.Name == "" || bindingArgs[arg.Name] {
			continue
		}

		if isRequiredName(shape, arg.Name) {
			continue
		}

		check, ok := shape.optional[arg.Name]
		if !ok {
			if !shape.open {
				w.r.Report(&report.Diagnostic{
					Severity: report.SevWarning,
					Code:     report.CodeWarnUnknown,
					File:     w.file,
					Span:     arg.NameSpan,
					Message:  fmt.Sprintf("`%s` agent does not recognize `%s`", displayName, arg.Name),
				})
			}
			continue
		}

		if msg := check(arg.Value); msg != "" {
			w.r.ReportError(report.CodeSemShape, w.file, arg.Value.Span(),
				fmt.Sprintf("`%s` must be %s, found %s", arg.Name, msg, valueKindName(arg.Value)))
		}
	}

	w.checkAdvisoryRanges(agent)
}

// checkAdvisoryRanges emits warnings for values outside their advisory
// bounds.  Advisory bounds never error.
func (w *Walker) checkAdvisoryRanges(agent *ast.Agent) {
	if agent.Kind != ast.AgentLLM {
		return
	}

	if arg := agent.NamedArg("temperature"); arg != nil {
		if num, ok := arg.Value.(*ast.NumberLit); ok && (num.Value < 0 || num.Value > 2) {
			w.r.Report(&report.Diagnostic{
				Severity: report.SevWarning,
				Code:     report.CodeWarnRange,
				File:     w.file,
				Span:     arg.Value.Span(),
				Message:  fmt.Sprintf("`temperature` %g is outside the advisory range [0, 2]", num.Value),
			})
		}
	}
}

func isRequiredName(shape *kindShape, name string) bool {
	for _, req := range shape.required {
		for _, n := range req.names {
			if n == name {
				return true
			}
		}
	}

	return false
}

func joinNames(names []string) string {
	if len(names) == 1 {
		return names[0]
	}

	out := names[0]
	for _, n := range names[1:] {
		out += "` or `" + n
	}

	return out
}

// -----------------------------------------------------------------------------

// checkMonitor validates the workflow `monitor` section.
func (w *Walker) checkMonitor(obj *ast.Object) map[string]interface{} {
	if obj == nil {
		return nil
	}

	for _, f := range obj.Fields {
		switch f.Name {
		case "enabled":
			if _, ok := f.Value.(*ast.BoolLit); !ok {
				w.r.ReportError(report.CodeSemShape, w.file, f.Value.Span(),
					"`enabled` must be a boolean")
			}
		case "interval":
			switch f.Value.(type) {
			case *ast.StringLit, *ast.NumberLit:
			default:
				w.r.ReportError(report.CodeSemShape, w.file, f.Value.Span(),
					"`interval` must be a string or number")
			}
		case "alert_topic":
			if _, ok := f.Value.(*ast.StringLit); !ok {
				w.r.ReportError(report.CodeSemShape, w.file, f.Value.Span(),
					"`alert_topic` must be a string")
			}
		default:
			w.r.Report(&report.Diagnostic{
				Severity: report.SevWarning,
				Code:     report.CodeWarnUnknown,
				File:     w.file,
				Span:     f.NameSpan,
				Message:  fmt.Sprintf("unknown monitor setting `%s`", f.Name),
			})
		}
	}

	obj2, _ := plainValue(obj).(map[string]interface{})
	return obj2
}

// checkDeployment validates the workflow `deployment` section.
func (w *Walker) checkDeployment(obj *ast.Object) *ir.Deployment {
	if obj == nil {
		return nil
	}

	dep := &ir.Deployment{Replicas: 1}

	for _, f := range obj.Fields {
		switch f.Name {
		case "namespace":
			if lit, ok := f.Value.(*ast.StringLit); ok {
				dep.Namespace = lit.Value
			} else {
				w.r.ReportError(report.CodeSemShape, w.file, f.Value.Span(),
					"`namespace` must be a string")
			}
		case "replicas":
			num, ok := f.Value.(*ast.NumberLit)
			if !ok || num.Value != float64(int(num.Value)) || num.Value < 1 {
				w.r.ReportError(report.CodeSemShape, w.file, f.Value.Span(),
					"`replicas` must be a positive integer")
				continue
			}
			dep.Replicas = int(num.Value)
		case "resources":
			dep.Resources = w.checkResources(f.Value)
		case "env":
			dep.Env = w.checkStringMap(f.Value, "env")
		case "languages":
			dep.Languages = w.checkLanguages(f.Value)
		default:
			w.r.Report(&report.Diagnostic{
				Severity: report.SevWarning,
				Code:     report.CodeWarnUnknown,
				File:     w.file,
				Span:     f.NameSpan,
				Message:  fmt.Sprintf("unknown deployment setting `%s`", f.Name),
			})
		}
	}

	return dep
}

// checkResources validates a `resources` object with string-valued cpu,
// memory, and gpu entries.
func (w *Walker) checkResources(v ast.Value) *ir.Resources {
	obj, ok := v.(*ast.Object)
	if !ok {
		w.r.ReportError(report.CodeSemShape, w.file, v.Span(), "`resources` must be an object")
		return nil
	}

	res := &ir.Resources{}
	for _, f := range obj.Fields {
		lit, isStr := f.Value.(*ast.StringLit)

		switch f.Name {
		case "cpu", "memory", "gpu":
			if !isStr {
				w.r.ReportError(report.CodeSemShape, w.file, f.Value.Span(),
					fmt.Sprintf("`%s` must be a string", f.Name))
				continue
			}

			switch f.Name {
			case "cpu":
				res.CPU = lit.Value
			case "memory":
				res.Memory = lit.Value
			case "gpu":
				res.GPU = lit.Value
			}
		default:
			w.r.Report(&report.Diagnostic{
				Severity: report.SevWarning,
				Code:     report.CodeWarnUnknown,
				File:     w.file,
				Span:     f.NameSpan,
				Message:  fmt.Sprintf("unknown resource `%s`", f.Name),
			})
		}
	}

	return res
}

// checkStringMap validates an object whose values must all be strings.
func (w *Walker) checkStringMap(v ast.Value, what string) map[string]string {
	obj, ok := v.(*ast.Object)
	if !ok {
		w.r.ReportError(report.CodeSemShape, w.file, v.Span(),
			fmt.Sprintf("`%s` must be an object", what))
		return nil
	}

	out := make(map[string]string, len(obj.Fields))
	for _, f := range obj.Fields {
		lit, isStr := f.Value.(*ast.StringLit)
		if !isStr {
			w.r.ReportError(report.CodeSemShape, w.file, f.Value.Span(),
				fmt.Sprintf("`%s` entries must be strings", what))
			continue
		}
		out[f.Name] = lit.Value
	}

	return out
}

// checkLanguages validates the `languages` map driving custom agent language
// assignment.
func (w *Walker) checkLanguages(v ast.Value) map[string]string {
	langs := w.checkStringMap(v, "languages")

	for kind, lang := range langs {
		if !util.Contains(ir.Languages, lang) {
			if obj, ok := v.(*ast.Object); ok {
				if f := obj.Field(kind); f != nil {
					w.r.ReportError(report.CodeSemShape, w.file, f.Value.Span(),
						fmt.Sprintf("unknown language `%s` for kind `%s`", lang, kind))
					continue
				}
			}
			w.r.ReportError(report.CodeSemShape, w.file, v.Span(),
				fmt.Sprintf("unknown language `%s` for kind `%s`", lang, kind))
		}
	}

	return langs
}
