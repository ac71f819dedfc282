package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValueLiterals(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{&StringLit{Value: "hello"}, `"hello"`},
		{&StringLit{Value: "a\nb\t\"c\""}, `"a\nb\t\"c\""`},
		{&StringLit{Value: "raw\ntext", Raw: true}, "\"\"\"raw\ntext\"\"\""},
		{&NumberLit{Value: 0.5, Text: "0.5"}, "0.5"},
		{&NumberLit{Value: 1e6}, "1e+06"},
		{&BoolLit{Value: true}, "true"},
		{&BoolLit{Value: false}, "false"},
		{&NullLit{}, "null"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, FormatValue(c.value))
	}
}

func TestFormatValueComposite(t *testing.T) {
	arr := &Array{Elements: []Value{
		&StringLit{Value: "a"},
		&NumberLit{Value: 2, Text: "2"},
	}}
	assert.Equal(t, `["a", 2]`, FormatValue(arr))

	assert.Equal(t, "{}", FormatValue(&Object{}))

	obj := &Object{Fields: []*ObjectField{
		{Name: "region", Value: &StringLit{Value: "eu"}},
		{Name: "spaced key", Value: &BoolLit{Value: true}},
	}}
	out := FormatValue(obj)
	assert.Contains(t, out, "region: \"eu\",")
	assert.Contains(t, out, "\"spaced key\": true,")
}

func TestFormatValuePathAndCall(t *testing.T) {
	path := &PathExpr{Segments: []string{"scorer", "output"}}
	assert.Equal(t, "scorer.output", FormatValue(path))

	call := &CallExpr{
		Name: "Database",
		Args: []*Argument{
			{Value: &StringLit{Value: "pg://db"}},
			{Value: &StringLit{Value: "select 1"}},
		},
	}
	assert.Equal(t, `Database("pg://db", "select 1")`, FormatValue(call))

	named := &CallExpr{
		Name: "NATS",
		Args: []*Argument{
			{Value: &StringLit{Value: "in"}},
			{Name: "queue", Value: &StringLit{Value: "workers"}},
		},
	}
	assert.Equal(t, `NATS("in", queue: "workers")`, FormatValue(named))
}

func TestQuoteStringControlCharacters(t *testing.T) {
	got := FormatValue(&StringLit{Value: "a\x01b"})
	assert.Equal(t, `"a\u0001b"`, got)
}

func TestAgentKindNames(t *testing.T) {
	kind, ok := AgentKindOf("HumanInLoop")
	assert.True(t, ok)
	assert.Equal(t, AgentHumanReview, kind)
	assert.Equal(t, "HumanReview", AgentKindName(kind))

	_, ok = AgentKindOf("Blaster")
	assert.False(t, ok)

	for name, kind := range map[string]int{
		"LLM":           AgentLLM,
		"MLModel":       AgentMLModel,
		"DataProcessor": AgentDataProcessor,
	} {
		assert.Equal(t, name, AgentKindName(kind))
	}
}

func TestFormatCustomAgent(t *testing.T) {
	prog := &Program{Items: []Item{
		&Workflow{
			Name: "W",
			Agents: []*Agent{{
				Kind:       AgentCustom,
				CustomName: "Scorer",
				Args: []*Argument{
					{Name: "id", Value: &StringLit{Value: "s"}},
				},
			}},
		},
	}}

	out := Format(prog)
	assert.Contains(t, out, "workflow W {")
	assert.Contains(t, out, `Custom("Scorer", id: "s")`)
}
