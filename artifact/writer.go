package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Writer flushes an artifact tree under an output root.  Each file is written
// to a uniquely named temporary sibling and renamed into place, so readers
// never observe a half-written file.
type Writer struct {
	root string
	log  *zap.Logger
}

// NewWriter builds a writer rooted at root.
func NewWriter(root string, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}

	return &Writer{root: root, log: log}
}

// WriteTree materializes every file in the tree under the root, creating
// directories as needed.  It stops at the first failure.
func (w *Writer) WriteTree(t *Tree) error {
	for _, p := range t.Paths() {
		data, _ := t.Get(p)
		if err := w.writeFile(p, data); err != nil {
			return err
		}
	}

	w.log.Debug("artifact tree written",
		zap.String("root", w.root), zap.Int("files", t.Len()))
	return nil
}

func (w *Writer) writeFile(rel string, data []byte) error {
	dst := filepath.Join(w.root, filepath.FromSlash(rel))

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create `%s`: %w", dir, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(dst), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write `%s`: %w", dst, err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write `%s`: %w", dst, err)
	}

	return nil
}
