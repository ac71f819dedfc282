package render

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"agents/llm/rust/main.rs.tera": {
			Data: []byte("// agent {{ agent_id }} of {{ workflow_name }}\n"),
		},
		"agents/llm/rust/nested/config.yaml.tera": {
			Data: []byte("id: {{ agent_id }}\n"),
		},
		"agents/llm/rust/notes.txt": {
			Data: []byte("not a template"),
		},
		"workflow/README.md.tera": {
			Data: []byte("# {{ workflow_name }}\n"),
		},
	}
}

func TestBundles(t *testing.T) {
	e := NewEngine(testFS())

	assert.Equal(t, []string{
		"agents/llm/rust",
		"agents/llm/rust/nested",
		"workflow",
	}, e.Bundles())
}

func TestHasBundle(t *testing.T) {
	e := NewEngine(testFS())

	assert.True(t, e.HasBundle("agents/llm/rust"))
	assert.False(t, e.HasBundle("agents/llm/python"))
}

func TestRenderBundle(t *testing.T) {
	e := NewEngine(testFS())

	out, err := e.Render("agents/llm/rust", map[string]interface{}{
		"agent_id":      "a",
		"workflow_name": "W",
	})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "// agent a of W\n", string(out["main.rs"]))
	assert.Equal(t, "id: a\n", string(out["nested/config.yaml"]))
}

func TestRenderMissingBundle(t *testing.T) {
	e := NewEngine(testFS())

	_, err := e.Render("agents/ghost/rust", nil)
	require.Error(t, err)

	var missing *MissingBundleError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "agents/ghost/rust", missing.Bundle)
}

func TestRenderBrokenTemplate(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"bad/file.txt.tera": {Data: []byte("{% if %}")},
	})

	_, err := e.Render("bad", map[string]interface{}{})
	require.Error(t, err)

	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "bad", rerr.Bundle)
	assert.Equal(t, "file.txt.tera", rerr.Template)
}

func TestFilters(t *testing.T) {
	cases := []struct {
		tmpl string
		ctx  map[string]interface{}
		want string
	}{
		{`{{ name|kebab }}`, map[string]interface{}{"name": "FraudDetection"}, "fraud-detection"},
		{`{{ name|snake }}`, map[string]interface{}{"name": "FraudDetection"}, "fraud_detection"},
		{`{{ name|kebab }}`, map[string]interface{}{"name": "already_snake"}, "already-snake"},
		{`{{ cfg|tojson }}`, map[string]interface{}{"cfg": map[string]interface{}{"a": 1}}, `{"a":1}`},
		{`{{ tags|contains:"x" }}`, map[string]interface{}{"tags": []string{"x", "y"}}, "True"},
		{`{{ tags|contains:"z" }}`, map[string]interface{}{"tags": []string{"x", "y"}}, "False"},
	}

	for _, c := range cases {
		e := NewEngine(fstest.MapFS{
			"b/out.tera": {Data: []byte(c.tmpl)},
		})

		out, err := e.Render("b", c.ctx)
		require.NoError(t, err, c.tmpl)
		assert.Equal(t, c.want, string(out["out"]), c.tmpl)
	}
}

func TestToYAMLFilter(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"b/out.tera": {Data: []byte("{{ cfg|toyaml }}")},
	})

	out, err := e.Render("b", map[string]interface{}{
		"cfg": map[string]interface{}{"region": "eu"},
	})
	require.NoError(t, err)
	assert.Equal(t, "region: eu", string(out["out"]))
}

func TestIndentFilter(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"b/out.tera": {Data: []byte("{{ text|indent:2 }}")},
	})

	out, err := e.Render("b", map[string]interface{}{"text": "a\nb"})
	require.NoError(t, err)
	assert.Equal(t, "a\n  b", string(out["out"]))
}
