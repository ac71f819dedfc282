package cmd

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kumeo/report"
)

const minimalSource = `
workflow W {
	source: NATS("in")
	target: NATS("out")
	agents: [
		LLM(id: "a", engine: "x", prompt: "p", input: "source", output: "out"),
	]
}
`

func writeSource(t *testing.T, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wf.kumeo")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func compile(t *testing.T, c *Compiler) (int, *report.Reporter) {
	t.Helper()

	c.logLevel = report.LogLevelSilent
	r := report.NewReporter(c.logLevel)
	return c.Compile(r), r
}

func readTree(t *testing.T, root string) map[string][]byte {
	t.Helper()

	files := make(map[string][]byte)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		files[filepath.ToSlash(rel)] = data
		return nil
	})
	require.NoError(t, err)

	return files
}

func TestCompileMinimalWorkflow(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	c := &Compiler{inputPath: writeSource(t, minimalSource), outputDir: out}

	code, r := compile(t, c)
	require.Equal(t, ExitOK, code)
	assert.False(t, r.AnyErrors())

	files := readTree(t, out)
	assert.Contains(t, files, "W/agents/a/src/main.rs")
	assert.Contains(t, files, "W/agents/a/Cargo.toml")
	assert.Contains(t, files, "W/agents/a/Dockerfile")
	assert.Contains(t, files, "W/Taskfile.yml")
	assert.Contains(t, files, "W/deploy/Chart.yaml")

	assert.Contains(t, string(files["W/agents/a/src/main.rs"]), `"in"`)
	assert.Contains(t, string(files["W/agents/a/src/main.rs"]), `"out"`)
}

func TestCompileDiagnosticsStopGeneration(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	c := &Compiler{
		inputPath: writeSource(t, `
workflow W {
	agents: [
		LLM(id: "a", engine: "x"),
	]
}
`),
		outputDir: out,
	}

	code, r := compile(t, c)
	assert.Equal(t, ExitDiags, code)
	assert.True(t, r.AnyErrors())

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestCompileCheckOnly(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	c := &Compiler{
		inputPath: writeSource(t, minimalSource),
		outputDir: out,
		checkOnly: true,
	}

	code, _ := compile(t, c)
	assert.Equal(t, ExitOK, code)

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestCompileMissingInput(t *testing.T) {
	c := &Compiler{
		inputPath: filepath.Join(t.TempDir(), "absent.kumeo"),
		outputDir: filepath.Join(t.TempDir(), "out"),
	}

	code, r := compile(t, c)
	assert.Equal(t, ExitIO, code)
	require.True(t, r.AnyErrors())
	assert.Equal(t, report.CodeIORead, r.Diagnostics()[0].Code)
}

func TestCompileRefusesNonEmptyOutputDir(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale"), []byte("x"), 0o644))

	c := &Compiler{inputPath: writeSource(t, minimalSource), outputDir: out}

	code, r := compile(t, c)
	assert.Equal(t, ExitIO, code)
	require.True(t, r.AnyErrors())
	assert.Contains(t, r.Diagnostics()[0].Message, "not empty")
}

func TestCompileMixedLanguages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	c := &Compiler{
		inputPath: writeSource(t, `
workflow Risk {
	source: NATS("tx")
	target: NATS("scored")
	agents: [
		LLM(id: "judge", engine: "x", prompt: "p", input: "source", output: "judged"),
		MLModel(id: "scorer", model: "risk.onnx", input: "judged", output: "scored"),
	]
}
`),
		outputDir: out,
	}

	code, _ := compile(t, c)
	require.Equal(t, ExitOK, code)

	files := readTree(t, out)
	assert.Contains(t, files, "Risk/agents/judge/Cargo.toml")
	assert.Contains(t, files, "Risk/agents/scorer/requirements.txt")
	assert.Contains(t, files, "Risk/deploy/templates/deployment.yaml")

	deploy := string(files["Risk/deploy/templates/deployment.yaml"])
	assert.Contains(t, deploy, "judge")
	assert.Contains(t, deploy, "scorer")
}

func TestCompileDeterministic(t *testing.T) {
	src := writeSource(t, minimalSource)

	outA := filepath.Join(t.TempDir(), "a")
	outB := filepath.Join(t.TempDir(), "b")

	codeA, _ := compile(t, &Compiler{inputPath: src, outputDir: outA})
	codeB, _ := compile(t, &Compiler{inputPath: src, outputDir: outB})
	require.Equal(t, ExitOK, codeA)
	require.Equal(t, ExitOK, codeB)

	assert.Equal(t, readTree(t, outA), readTree(t, outB))
}

func TestCompilePolicyOverrideWarns(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policy, []byte("LLM: python\n"), 0o644))

	out := filepath.Join(dir, "out")
	c := &Compiler{
		inputPath:  writeSource(t, minimalSource),
		outputDir:  out,
		policyPath: policy,
	}

	code, r := compile(t, c)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, 1, r.WarningCount())
	assert.Equal(t, report.CodeWarnOverride, r.Diagnostics()[0].Code)

	files := readTree(t, out)
	assert.Contains(t, files, "W/agents/a/requirements.txt")
}

func TestCompileCustomTemplatesDir(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "templates", "agents", "llm", "rust")
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(bundle, "only.txt.tera"), []byte("agent {{ agent_id }}"), 0o644))

	wfBundle := filepath.Join(dir, "templates", "workflow")
	require.NoError(t, os.MkdirAll(wfBundle, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(wfBundle, "README.md.tera"), []byte("# {{ workflow_name }}"), 0o644))

	out := filepath.Join(dir, "out")
	c := &Compiler{
		inputPath:    writeSource(t, minimalSource),
		outputDir:    out,
		templatesDir: filepath.Join(dir, "templates"),
	}

	code, _ := compile(t, c)
	require.Equal(t, ExitOK, code)

	files := readTree(t, out)
	assert.Equal(t, "agent a", string(files["W/agents/a/only.txt"]))
	assert.Equal(t, "# W", string(files["W/README.md"]))
}
