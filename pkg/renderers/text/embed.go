package text

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded plain-text templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
