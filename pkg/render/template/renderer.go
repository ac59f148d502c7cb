package template

import (
	"io"
)

// TemplateRenderer is the seam between renderers and a template engine. The
// rendered text is returned and also written to every non-nil out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
