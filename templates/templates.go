// Package templates carries the built-in code generation bundles.  Each
// bundle is a directory of `.tera` files rendered per agent or per workflow;
// a directory on disk passed via `-t` takes precedence over this tree.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed all:agents all:workflow
var builtin embed.FS

// Builtin returns the embedded template tree.
func Builtin() fs.FS {
	return builtin
}

// Names lists the top-level bundle families.
func Names() []string {
	var names []string

	entries, err := fs.ReadDir(builtin, ".")
	if err != nil {
		return nil
	}

	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names
}
