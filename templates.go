package posts

import (
	"io/fs"

	"github.com/goliatone/go-posts/pkg/renderers/text"
	"github.com/goliatone/go-posts/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedTextTemplates exposes the built-in plain-text templates.
func EmbeddedTextTemplates() fs.FS {
	return text.TemplatesFS()
}

// AssetsFS exposes the stylesheet bundled with the HTML renderer.
//
// Typical mount:
//
//	mux.Handle("/assets/posts/",
//	  http.StripPrefix("/assets/posts/",
//	    http.FileServerFS(posts.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
