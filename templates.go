package jobform

import (
	"io/fs"

	"github.com/goliatone/go-jobform/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// EmbeddedAssets exposes the base stylesheet served next to the HTML pages.
func EmbeddedAssets() fs.FS {
	return html.AssetsFS()
}
