package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/visibility"
)

// Renderer drives an application session from the terminal. Render produces
// a plain-text rendition of a view; Run prompts for values until an
// application is accepted.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	maxAttempts  int
	logger       *slog.Logger

	in  terminal.FileReader
	out terminal.FileWriter
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "! "},
		logger:       slog.New(slog.DiscardHandler),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if _, ok := ParseOutputFormat(string(r.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.in, r.out)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Format.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render returns the plain-text form (with inline errors) or the summary of
// the accepted application.
func (r *Renderer) Render(ctx context.Context, view form.View, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if view.Submitted() {
		return []byte(r.summaryText(view)), nil
	}
	return []byte(r.formText(view, opts.TitleOrDefault())), nil
}

// Run prompts for every visible field, submits, and re-prompts the fields
// that failed validation until the application is accepted. After showing
// the summary it offers to edit again; declining returns the snapshot.
func (r *Renderer) Run(ctx context.Context, session *form.Session) (form.Snapshot, error) {
	if session == nil {
		return form.Snapshot{}, errors.New("tui: session is required")
	}
	if r.driver == nil {
		return form.Snapshot{}, ErrNoPromptDriver
	}

	rejected := 0
	promptAll := true
	for {
		if err := ctx.Err(); err != nil {
			return form.Snapshot{}, err
		}

		if session.Mode() == form.ModeSubmitted {
			snapshot, _ := session.Snapshot()
			if err := r.driver.Info(ctx, r.summaryText(session.View())); err != nil {
				return form.Snapshot{}, err
			}
			again, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Edit Application?"})
			if err != nil {
				return form.Snapshot{}, err
			}
			if !again {
				return snapshot, nil
			}
			if err := session.EditAgain(); err != nil {
				return form.Snapshot{}, err
			}
			promptAll = true
			continue
		}

		if err := r.promptFields(ctx, session, promptAll); err != nil {
			return form.Snapshot{}, err
		}

		errs, ok, err := session.Submit()
		if err != nil {
			return form.Snapshot{}, err
		}
		if ok {
			rejected = 0
			continue
		}

		rejected++
		r.logger.Debug("submission rejected", slog.Int("attempt", rejected), slog.Any("fields", errs.Fields()))
		if r.maxAttempts > 0 && rejected >= r.maxAttempts {
			return form.Snapshot{}, fmt.Errorf("%w: %d attempts", ErrTooManyAttempts, rejected)
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("%d field(s) need attention", len(errs))); err != nil {
			return form.Snapshot{}, err
		}
		promptAll = false
	}
}

// promptFields asks for the fields that apply to the current role. After a
// rejected submit only failing fields, plus conditional fields that are
// still blank, are asked again.
func (r *Renderer) promptFields(ctx context.Context, session *form.Session, all bool) error {
	errs := session.Errors()
	for _, field := range model.Catalogue() {
		state := session.State()
		if !visibility.Applies(field.Name, state.ApplyingFor) {
			continue
		}
		retry := errs.Has(field.Name) ||
			(visibility.Conditional(field.Name) && strings.TrimSpace(state.Value(field.Name)) == "")
		if !all && !retry {
			continue
		}
		if err := r.promptField(ctx, session, field, state, errs.Message(field.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, session *form.Session, field model.Field, state model.FormState, problem string) error {
	help := fieldHelp(field)
	if problem != "" {
		help = r.theme.ErrorPrefix + problem
	}

	switch field.Input {
	case model.InputSelect:
		options := optionLabels(field.Options)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      options,
			DefaultIndex: indexOf(optionValues(field.Options), state.Value(field.Name)),
			Help:         help,
		})
		if err != nil {
			return err
		}
		value := ""
		if idx >= 0 && idx < len(field.Options) {
			value = field.Options[idx].Value
		}
		return session.Change(field.Name, value)

	case model.InputCheckboxGroup:
		var defaults []int
		for i, option := range field.Options {
			if state.HasSkill(model.Skill(option.Value)) {
				defaults = append(defaults, i)
			}
		}
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.Label,
			Options:  optionLabels(field.Options),
			Defaults: defaults,
			Help:     help,
		})
		if err != nil {
			return err
		}
		selected := make(map[int]bool, len(picked))
		for _, idx := range picked {
			selected[idx] = true
		}
		changes := make([]form.Change, 0, len(field.Options))
		for i, option := range field.Options {
			changes = append(changes, form.SetSkill(model.Skill(option.Value), selected[i]))
		}
		return session.Apply(changes...)

	case model.InputTextArea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: field.Label,
			Default: state.Value(field.Name),
			Help:    help,
		})
		if err != nil {
			return err
		}
		return session.Change(field.Name, value)

	default:
		value, err := r.driver.Input(ctx, InputConfig{
			Message: field.Label,
			Default: state.Value(field.Name),
			Help:    help,
		})
		if err != nil {
			return err
		}
		return session.Change(field.Name, value)
	}
}

func (r *Renderer) formText(view form.View, title string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for _, field := range view.Fields {
		fmt.Fprintf(&b, "%s: %s\n", field.Label, view.State.Value(field.Name))
		if message := view.Errors.Message(field.Name); message != "" {
			fmt.Fprintf(&b, "  %s%s\n", r.theme.ErrorPrefix, message)
		}
	}
	return b.String()
}

func (r *Renderer) summaryText(view form.View) string {
	var b strings.Builder
	b.WriteString(r.theme.InfoPrefix)
	b.WriteString("Submitted Data\n")
	for _, field := range view.SummaryFields {
		if field.Input == model.InputTextArea {
			fmt.Fprintf(&b, "%s:\n%s\n", field.DisplayLabel(), view.SummaryValue(field))
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", field.DisplayLabel(), view.SummaryValue(field))
	}
	return b.String()
}

func fieldHelp(field model.Field) string {
	switch field.Input {
	case model.InputDateTime:
		return "Format: YYYY-MM-DDTHH:MM"
	case model.InputNumber:
		return "Number of years"
	case model.InputURL:
		return "Starts with http://, https:// or ftp://"
	}
	return ""
}

func optionLabels(options []model.Option) []string {
	out := make([]string, len(options))
	for i, option := range options {
		out[i] = option.Label
	}
	return out
}

func optionValues(options []model.Option) []string {
	out := make([]string, len(options))
	for i, option := range options {
		out[i] = option.Value
	}
	return out
}
