package html

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
	rendertemplate "github.com/goliatone/go-jobform/pkg/render/template"
	"github.com/goliatone/go-jobform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-jobform/pkg/visibility"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	fragment         bool
	stylesheet       string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide form.tmpl, summary.tmpl and layout.tmpl at its root.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. Templates found
// there take precedence over the embedded bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = path
	}
}

// WithTemplateRenderer injects a custom template renderer implementation. The
// base stylesheet and the portfolio_link filter are only wired into the
// built-in engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithFragment renders only the form or summary markup, without the page
// layout.
func WithFragment() Option {
	return func(cfg *config) {
		cfg.fragment = true
	}
}

// WithStylesheet links the base stylesheet from every page, typically the
// URL AssetsFS is mounted under plus DefaultStylesheet.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = href
	}
}

// Renderer produces server-rendered HTML: the editable form while editing and
// the summary of the accepted application once submitted.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	fragment  bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithBaseDir(cfg.templatesDir),
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithFilter("portfolio_link", filterPortfolioLink),
			gotemplate.WithGlobalData(map[string]any{"stylesheet": cfg.stylesheet}),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, fragment: cfg.fragment}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the page for view.
func (r *Renderer) Render(ctx context.Context, view form.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]any{
		"title":         options.TitleOrDefault(),
		"mode":          view.Mode.String(),
		"action":        orDefault(options.Action, "/"),
		"edit_action":   orDefault(options.EditAction, "/edit"),
		"hidden_fields": hiddenContext(options.HiddenFields),
	}

	name := "form"
	if view.Submitted() {
		name = "summary"
		data["summary"] = summaryContext(view)
		data["snapshot_id"] = view.Snapshot.ID
	} else {
		data["fields"] = fieldsContext(view)
	}

	body, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s: %w", name, err)
	}
	if r.fragment {
		return []byte(body), nil
	}

	page, err := r.templates.RenderTemplate("layout", map[string]any{
		"title": options.TitleOrDefault(),
		"theme": buildThemeContext(options.Theme),
		"body":  body,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render layout: %w", err)
	}
	return []byte(page), nil
}

func fieldsContext(view form.View) []any {
	out := make([]any, 0, len(view.Fields))
	for _, field := range view.Fields {
		entry := map[string]any{
			"name":        field.Name,
			"label":       field.Label,
			"input":       string(field.Input),
			"placeholder": field.Placeholder,
			"value":       view.State.Value(field.Name),
			"error":       view.Errors.Message(field.Name),
			"conditional": visibility.Conditional(field.Name),
		}
		if len(field.Options) > 0 {
			options := make([]any, 0, len(field.Options))
			for _, option := range field.Options {
				options = append(options, map[string]any{
					"value":    option.Value,
					"label":    option.Label,
					"selected": optionSelected(view.State, field, option),
				})
			}
			entry["options"] = options
		}
		out = append(out, entry)
	}
	return out
}

func optionSelected(state model.FormState, field model.Field, option model.Option) bool {
	if field.Multi() {
		return state.HasSkill(model.Skill(option.Value))
	}
	return state.Value(field.Name) == option.Value
}

func summaryContext(view form.View) []any {
	out := make([]any, 0, len(view.SummaryFields))
	for _, field := range view.SummaryFields {
		entry := map[string]any{
			"label": field.DisplayLabel(),
			"value": view.SummaryValue(field),
			"kind":  "text",
		}
		switch field.Input {
		case model.InputURL:
			entry["kind"] = "link"
			entry["raw"] = view.Snapshot.State.Value(field.Name)
		case model.InputCheckboxGroup:
			entry["kind"] = "list"
			entry["items"] = view.Snapshot.State.SkillLabels()
		case model.InputTextArea:
			entry["kind"] = "multiline"
		}
		out = append(out, entry)
	}
	return out
}

func hiddenContext(fields map[string]string) []any {
	sorted := render.SortedHiddenFields(fields)
	out := make([]any, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
