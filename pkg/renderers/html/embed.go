package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*.css
var embeddedAssets embed.FS

// DefaultStylesheet is the file name of the base stylesheet within AssetsFS.
const DefaultStylesheet = "jobform.css"

// TemplatesFS exposes the embedded template bundle rooted at the templates
// directory, so callers can copy and customise it.
func TemplatesFS() fs.FS {
	return subFS(embeddedTemplates, "templates")
}

// AssetsFS exposes the base stylesheet so servers can mount it:
//
//	mux.Handle("GET /assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(html.AssetsFS()),
//	  ),
//	)
//
// Its rules read theme tokens through CSS variables with built-in fallbacks.
func AssetsFS() fs.FS {
	return subFS(embeddedAssets, "assets")
}

func subFS(files embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		return files
	}
	return sub
}
