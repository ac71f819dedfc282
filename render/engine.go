package render

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"

	"kumeo/util"
)

// fsLoader adapts an fs.FS to pongo2's template loader interface so bundles
// can live in an embedded tree or on disk interchangeably.
type fsLoader struct {
	fsys fs.FS
}

func (l *fsLoader) Abs(base, name string) string {
	if base == "" {
		return name
	}

	return path.Join(path.Dir(base), name)
}

func (l *fsLoader) Get(p string) (io.Reader, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(data), nil
}

// -----------------------------------------------------------------------------

// templateExt is the suffix identifying template files inside a bundle; it is
// stripped from rendered output paths.
const templateExt = ".tera"

// Engine renders template bundles.  A bundle is a directory of `.tera` files;
// rendering a bundle evaluates every template in it against one context and
// returns the rendered files keyed by their bundle-relative paths.
type Engine struct {
	fsys fs.FS
	set  *pongo2.TemplateSet
}

// NewEngine builds an engine over a template tree.
func NewEngine(fsys fs.FS) *Engine {
	registerFilters()

	return &Engine{
		fsys: fsys,
		set:  pongo2.NewSet("kumeo", &fsLoader{fsys: fsys}),
	}
}

// MissingBundleError indicates that a requested bundle directory does not
// exist in the template tree.
type MissingBundleError struct {
	Bundle string
}

func (e *MissingBundleError) Error() string {
	return fmt.Sprintf("no template bundle `%s`", e.Bundle)
}

// RenderError wraps a template evaluation failure with its location.
type RenderError struct {
	Bundle   string
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template `%s/%s`: %v", e.Bundle, e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Bundles lists every directory in the tree that directly contains at least
// one template file, sorted.
func (e *Engine) Bundles() []string {
	seen := make(map[string]bool)

	fs.WalkDir(e.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		if strings.HasSuffix(p, templateExt) {
			seen[path.Dir(p)] = true
		}

		return nil
	})

	return util.SortedKeys(seen)
}

// HasBundle reports whether the named bundle exists.
func (e *Engine) HasBundle(bundle string) bool {
	info, err := fs.Stat(e.fsys, bundle)
	return err == nil && info.IsDir()
}

// Render evaluates every template under a bundle directory against ctx.  The
// result maps bundle-relative output paths (extension stripped) to rendered
// content.  Output order is deterministic because the map is keyed by path.
func (e *Engine) Render(bundle string, ctx map[string]interface{}) (map[string][]byte, error) {
	if !e.HasBundle(bundle) {
		return nil, &MissingBundleError{Bundle: bundle}
	}

	out := make(map[string][]byte)

	err := fs.WalkDir(e.fsys, bundle, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(p, templateExt) {
			return nil
		}

		rel, _ := relPath(bundle, p)

		tpl, err := e.set.FromFile(p)
		if err != nil {
			return &RenderError{Bundle: bundle, Template: rel, Err: err}
		}

		data, err := tpl.ExecuteBytes(pongo2.Context(ctx))
		if err != nil {
			return &RenderError{Bundle: bundle, Template: rel, Err: err}
		}

		out[strings.TrimSuffix(rel, templateExt)] = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func relPath(base, p string) (string, bool) {
	if p == base {
		return ".", true
	}

	prefix := base + "/"
	if strings.HasPrefix(p, prefix) {
		return p[len(prefix):], true
	}

	return p, false
}
