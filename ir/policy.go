package ir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"kumeo/util"
)

// Language tags assigned to agents.
const (
	LangSystems   = "rust"
	LangScripting = "python"
)

// Languages is the closed set of valid language tags.
var Languages = []string{LangSystems, LangScripting}

// LanguagePolicy maps agent kind names to target language tags.  Lookups fall
// back to the fixed default table, so an override file only needs to name the
// kinds it changes.
type LanguagePolicy map[string]string

// defaultPolicy is the fixed assignment table: the performance tier gets the
// systems language, the data tier gets the scripting language.
var defaultPolicy = LanguagePolicy{
	"LLM":                 LangSystems,
	"Router":              LangSystems,
	"DataProcessor":       LangSystems,
	"DecisionMatrix":      LangSystems,
	"HumanReview":         LangSystems,
	"MLModel":             LangScripting,
	"BayesianNetwork":     LangScripting,
	"Aggregator":          LangScripting,
	"RuleEngine":          LangScripting,
	"DataNormalizer":      LangScripting,
	"MissingValueHandler": LangScripting,
}

// DefaultLanguagePolicy returns a copy of the built-in assignment table.
func DefaultLanguagePolicy() LanguagePolicy {
	p := make(LanguagePolicy, len(defaultPolicy))
	for k, v := range defaultPolicy {
		p[k] = v
	}

	return p
}

// Language returns the language tag for the given kind name, falling back to
// the default table and finally to the systems language.
func (p LanguagePolicy) Language(kindName string) string {
	if lang, ok := p[kindName]; ok {
		return lang
	}

	if lang, ok := defaultPolicy[kindName]; ok {
		return lang
	}

	return LangSystems
}

// LoadLanguagePolicy reads a policy override file and merges it over the
// default table.  The format is chosen by extension: `.toml` parses as TOML,
// anything else as YAML (which subsumes JSON).
func LoadLanguagePolicy(path string) (LanguagePolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading language policy: %w", err)
	}

	overrides := make(map[string]string)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &overrides)
	} else {
		err = yaml.Unmarshal(data, &overrides)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing language policy %s: %w", path, err)
	}

	policy := DefaultLanguagePolicy()
	for kind, lang := range overrides {
		if !util.Contains(Languages, lang) {
			return nil, fmt.Errorf("language policy %s: unknown language %q for kind %q", path, lang, kind)
		}

		policy[kind] = lang
	}

	return policy, nil
}
