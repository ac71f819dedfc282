package artifact

import (
	"fmt"

	"kumeo/util"
)

// Tree accumulates generated files in memory before anything touches disk, so
// a failed generation run leaves no partial output behind.
type Tree struct {
	files map[string][]byte
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{files: make(map[string][]byte)}
}

// Add records a file at a slash-separated relative path.  Adding the same
// path twice is a programming error surfaced to the caller.
func (t *Tree) Add(path string, data []byte) error {
	if _, ok := t.files[path]; ok {
		return fmt.Errorf("duplicate artifact path `%s`", path)
	}

	t.files[path] = data
	return nil
}

// Get returns the content at path, if present.
func (t *Tree) Get(path string) ([]byte, bool) {
	data, ok := t.files[path]
	return data, ok
}

// Len returns the number of files in the tree.
func (t *Tree) Len() int {
	return len(t.files)
}

// Paths returns every file path in sorted order.
func (t *Tree) Paths() []string {
	return util.SortedKeys(t.files)
}
