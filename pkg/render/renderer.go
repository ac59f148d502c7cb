package render

import (
	"context"

	"github.com/goliatone/go-jobform/pkg/form"
)

// Renderer converts a session view into a byte representation (HTML, JSON,
// plain text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view form.View, options RenderOptions) ([]byte, error)
}
