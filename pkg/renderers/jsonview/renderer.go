// Package jsonview renders session views as JSON for the HTTP API and the
// CLI.
package jsonview

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/validation"
)

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the output with two-space indentation.
func WithIndent() Option {
	return func(r *Renderer) {
		r.indent = true
	}
}

// Renderer encodes a form.View as a Payload.
type Renderer struct {
	indent bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the JSON renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Payload is the wire shape of a view.
type Payload struct {
	Mode     string             `json:"mode"`
	State    model.FormState    `json:"state"`
	Errors   model.ErrorMap     `json:"errors,omitempty"`
	Issues   []validation.Issue `json:"issues,omitempty"`
	Fields   []model.Field      `json:"fields"`
	Snapshot *form.Snapshot     `json:"snapshot,omitempty"`
	Summary  []SummaryEntry     `json:"summary,omitempty"`
}

// SummaryEntry is one line of the submitted summary.
type SummaryEntry struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// NewPayload projects view into its wire shape.
func NewPayload(view form.View) Payload {
	payload := Payload{
		Mode:     view.Mode.String(),
		State:    view.State.Clone(),
		Errors:   view.Errors.Clone(),
		Issues:   validation.Issues(view.Errors),
		Fields:   view.Fields,
		Snapshot: view.Snapshot,
	}
	if payload.State.AdditionalSkills == nil {
		payload.State.AdditionalSkills = []model.Skill{}
	}
	if payload.Fields == nil {
		payload.Fields = []model.Field{}
	}
	if view.Submitted() {
		for _, field := range view.SummaryFields {
			payload.Summary = append(payload.Summary, SummaryEntry{
				Field: field.Name,
				Label: field.DisplayLabel(),
				Value: view.SummaryValue(field),
			})
		}
	}
	return payload
}

// Render encodes the view.
func (r *Renderer) Render(_ context.Context, view form.View, _ render.RenderOptions) ([]byte, error) {
	return r.Encode(NewPayload(view))
}

// Encode marshals any value with the renderer's formatting.
func (r *Renderer) Encode(value any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if r.indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview: marshal: %w", err)
	}
	return data, nil
}
