// Package jobform is the entry point for embedding the job application form:
// it re-exports the session and the built-in renderers so callers can start
// with a single import.
package jobform

import (
	"context"

	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/renderers/html"
	"github.com/goliatone/go-jobform/pkg/renderers/jsonview"
	"github.com/goliatone/go-jobform/pkg/validation"
)

// Session is the Editing/Submitted state machine for one applicant.
type Session = form.Session

// Snapshot is the frozen copy of an accepted application.
type Snapshot = form.Snapshot

// View is the read-only projection handed to renderers.
type View = form.View

// FormState holds every field value.
type FormState = model.FormState

// ErrorMap maps field names to validation messages.
type ErrorMap = model.ErrorMap

// RenderOptions describes per-request rendering overrides.
type RenderOptions = render.RenderOptions

// NewSession starts a blank application in editing mode.
func NewSession(options ...form.Option) *Session {
	return form.New(options...)
}

// Validate checks state and returns every failing field.
func Validate(state FormState) ErrorMap {
	return validation.Validate(state)
}

// NewRegistry returns a registry holding the HTML and JSON renderers.
func NewRegistry(options ...html.Option) (*render.Registry, error) {
	htmlRenderer, err := html.New(options...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(htmlRenderer)
	registry.MustRegister(jsonview.New())
	return registry, nil
}

// RenderHTML renders the session's current view as a full HTML page using the
// embedded templates.
func RenderHTML(ctx context.Context, session *Session, options RenderOptions) ([]byte, error) {
	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, session.View(), options)
}
