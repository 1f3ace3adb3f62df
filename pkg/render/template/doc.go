// Package template defines the renderer-agnostic template engine contract the
// views depend on. The gotemplate subpackage provides the pongo2-backed
// implementation used by default.
package template
