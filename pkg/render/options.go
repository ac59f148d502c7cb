package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the session.
type RenderOptions struct {
	// Action is the URL the editable form posts to.
	Action string
	// EditAction is the URL the "Edit Application" button posts to.
	EditAction string
	// Title overrides the page heading.
	Title string
	// HiddenFields are emitted as hidden inputs in every form, for example the
	// CSRF token.
	HiddenFields map[string]string
	// Theme carries resolved theme tokens and CSS variables. Nil renders
	// without theme styling.
	Theme *theme.RendererConfig
}

// DefaultTitle is used when RenderOptions.Title is blank.
const DefaultTitle = "Job Application Form"

// TitleOrDefault returns the configured title or DefaultTitle.
func (o RenderOptions) TitleOrDefault() string {
	if o.Title != "" {
		return o.Title
	}
	return DefaultTitle
}
