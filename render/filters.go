package render

import (
	"encoding/json"
	"strings"
	"sync"
	"unicode"

	"github.com/flosch/pongo2/v6"
	"gopkg.in/yaml.v3"
)

var filterOnce sync.Once

// registerFilters installs the custom filters used by the bundles.  Filters
// are process-global in pongo2, so registration happens exactly once.  The
// stock `lower`, `upper`, and `default` filters are builtins and need no
// registration here.
func registerFilters() {
	filterOnce.Do(func() {
		pongo2.RegisterFilter("kebab", filterKebab)
		pongo2.RegisterFilter("snake", filterSnake)
		pongo2.RegisterFilter("toyaml", filterToYAML)
		pongo2.RegisterFilter("tojson", filterToJSON)
		pongo2.RegisterFilter("indent", filterIndent)
		pongo2.RegisterFilter("contains", filterContains)
	})
}

// splitWords breaks an identifier into lowercase words at underscores,
// hyphens, spaces, and case boundaries.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}

	for _, c := range s {
		switch {
		case c == '_' || c == '-' || c == ' ':
			flush()
		case unicode.IsUpper(c):
			flush()
			cur.WriteRune(c)
		default:
			cur.WriteRune(c)
		}
	}
	flush()

	return words
}

func filterKebab(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.Join(splitWords(in.String()), "-")), nil
}

func filterSnake(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.Join(splitWords(in.String()), "_")), nil
}

func filterToYAML(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	data, err := yaml.Marshal(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:toyaml", OrigError: err}
	}

	return pongo2.AsSafeValue(strings.TrimRight(string(data), "\n")), nil
}

func filterToJSON(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	data, err := json.Marshal(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
	}

	return pongo2.AsSafeValue(string(data)), nil
}

// filterIndent prefixes every line after the first with n spaces, matching
// the usual template-engine semantics for embedding blocks in YAML.
func filterIndent(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	n := param.Integer()
	if n < 0 {
		n = 0
	}

	pad := strings.Repeat(" ", n)
	lines := strings.Split(in.String(), "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}

	return pongo2.AsSafeValue(strings.Join(lines, "\n")), nil
}

func filterContains(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	found := false
	in.Iterate(func(idx, count int, item, _ *pongo2.Value) bool {
		if item.String() == param.String() {
			found = true
			return false
		}
		return true
	}, func() {})

	return pongo2.AsValue(found), nil
}
