package templates

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kumeo/ir"
)

// Every kind in the default policy table must ship a bundle for its assigned
// language, or compilation of a valid workflow would fail at generation time.
func TestBuiltinCoversDefaultPolicy(t *testing.T) {
	fsys := Builtin()

	for kind, lang := range ir.DefaultLanguagePolicy() {
		bundle := "agents/" + strings.ToLower(kind) + "/" + lang

		info, err := fs.Stat(fsys, bundle)
		require.NoError(t, err, bundle)
		assert.True(t, info.IsDir(), bundle)
	}

	for _, bundle := range []string{"agents/custom/rust", "agents/custom/python", "workflow"} {
		info, err := fs.Stat(fsys, bundle)
		require.NoError(t, err, bundle)
		assert.True(t, info.IsDir(), bundle)
	}
}

func TestBuiltinBundleContents(t *testing.T) {
	fsys := Builtin()

	entries, err := fs.ReadDir(fsys, "agents")
	require.NoError(t, err)

	for _, kindDir := range entries {
		langs, err := fs.ReadDir(fsys, "agents/"+kindDir.Name())
		require.NoError(t, err)

		for _, langDir := range langs {
			bundle := "agents/" + kindDir.Name() + "/" + langDir.Name()

			var names []string
			err := fs.WalkDir(fsys, bundle, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					names = append(names, strings.TrimPrefix(p, bundle+"/"))
				}
				return nil
			})
			require.NoError(t, err)

			assert.Contains(t, names, "Dockerfile.tera", bundle)
			assert.Contains(t, names, "values.yaml.tera", bundle)
			assert.Contains(t, names, "README.md.tera", bundle)

			for _, n := range names {
				assert.True(t, strings.HasSuffix(n, ".tera"), "%s/%s", bundle, n)
			}
		}
	}
}

func TestNames(t *testing.T) {
	names := Names()

	assert.Contains(t, names, "agents")
	assert.Contains(t, names, "workflow")
}
