package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	tree := NewTree()
	require.NoError(t, tree.Add("w/agents/a/main.rs", []byte("fn main() {}\n")))
	require.NoError(t, tree.Add("w/README.md", []byte("# w\n")))

	require.NoError(t, NewWriter(root, nil).WriteTree(tree))

	data, err := os.ReadFile(filepath.Join(root, "w", "agents", "a", "main.rs"))
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}\n", string(data))

	data, err = os.ReadFile(filepath.Join(root, "w", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# w\n", string(data))
}

func TestWriteTreeLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()

	tree := NewTree()
	require.NoError(t, tree.Add("file.txt", []byte("data")))
	require.NoError(t, NewWriter(root, nil).WriteTree(tree))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file.txt", entries[0].Name())
}

func TestWriteTreeFailure(t *testing.T) {
	root := t.TempDir()

	// A file standing where a directory must go makes MkdirAll fail.
	require.NoError(t, os.WriteFile(filepath.Join(root, "w"), []byte("x"), 0o644))

	tree := NewTree()
	require.NoError(t, tree.Add("w/file.txt", []byte("data")))

	err := NewWriter(root, nil).WriteTree(tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")
}
