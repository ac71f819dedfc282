package ir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultLanguagePolicy(t *testing.T) {
	p := DefaultLanguagePolicy()

	assert.Equal(t, LangSystems, p["LLM"])
	assert.Equal(t, LangSystems, p["Router"])
	assert.Equal(t, LangScripting, p["MLModel"])
	assert.Equal(t, LangScripting, p["Aggregator"])

	// The returned table is a copy.
	p["LLM"] = LangScripting
	assert.Equal(t, LangSystems, DefaultLanguagePolicy()["LLM"])
}

func TestLanguageFallback(t *testing.T) {
	p := LanguagePolicy{"MLModel": LangSystems}

	assert.Equal(t, LangSystems, p.Language("MLModel"))
	assert.Equal(t, LangScripting, p.Language("RuleEngine"))
	assert.Equal(t, LangSystems, p.Language("SomethingCustom"))
}

func TestLoadLanguagePolicyYAML(t *testing.T) {
	path := writePolicy(t, "policy.yaml", "LLM: python\nMLModel: rust\n")

	p, err := LoadLanguagePolicy(path)
	require.NoError(t, err)

	assert.Equal(t, LangScripting, p["LLM"])
	assert.Equal(t, LangSystems, p["MLModel"])
	assert.Equal(t, LangSystems, p["Router"])
}

func TestLoadLanguagePolicyTOML(t *testing.T) {
	path := writePolicy(t, "policy.toml", "Aggregator = \"rust\"\n")

	p, err := LoadLanguagePolicy(path)
	require.NoError(t, err)

	assert.Equal(t, LangSystems, p["Aggregator"])
	assert.Equal(t, LangScripting, p["BayesianNetwork"])
}

func TestLoadLanguagePolicyRejectsUnknownLanguage(t *testing.T) {
	path := writePolicy(t, "policy.yaml", "LLM: cobol\n")

	_, err := LoadLanguagePolicy(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown language")
}

func TestLoadLanguagePolicyMissingFile(t *testing.T) {
	_, err := LoadLanguagePolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
