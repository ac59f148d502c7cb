package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-jobform/pkg/apispec"
	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
)

const maxBodyBytes = 64 << 10

var errEmptyBody = StatusError{Code: http.StatusBadRequest, Err: errors.New("server: request body must be a JSON object")}

// HTML

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.htmlError(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.writeHTML(w, r, http.StatusOK, e)
}

// handleFormPost binds the posted values and either re-renders the form
// (action=refresh) or submits it. An accepted submission redirects to the
// summary.
func (s *Server) handleFormPost(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.htmlError(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.parseHTMLPost(w, r, e); err != nil {
		s.htmlError(w, r, err)
		return
	}
	if e.session.Mode() == form.ModeSubmitted {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := e.session.Apply(changesFromForm(r.PostForm)...); err != nil {
		s.htmlError(w, r, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}
	if r.PostForm.Get("action") == "refresh" {
		s.writeHTML(w, r, http.StatusOK, e)
		return
	}

	_, accepted, err := e.session.Submit()
	if err != nil {
		s.htmlError(w, r, err)
		return
	}
	if accepted {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeHTML(w, r, http.StatusUnprocessableEntity, e)
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.htmlError(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.parseHTMLPost(w, r, e); err != nil {
		s.htmlError(w, r, err)
		return
	}
	if err := e.session.EditAgain(); err != nil && !errors.Is(err, form.ErrInvalidTransition) {
		s.htmlError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) parseHTMLPost(w http.ResponseWriter, r *http.Request, e *entry) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}
	if token := r.PostForm.Get(CSRFField); token == "" || token != e.csrf {
		return ErrBadCSRF
	}
	return nil
}

func (s *Server) writeHTML(w http.ResponseWriter, r *http.Request, code int, e *entry) {
	body, err := s.html.Render(r.Context(), e.session.View(), s.renderOptions(e))
	if err != nil {
		s.htmlError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", s.html.ContentType())
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func (s *Server) htmlError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	s.logError(r, code, err)
	http.Error(w, http.StatusText(code), code)
}

// changesFromForm turns posted values into change events. Text fields are
// only changed when present; the skills group always is, since unchecked
// boxes are not posted.
func changesFromForm(values url.Values) []form.Change {
	var changes []form.Change
	for _, field := range model.Catalogue() {
		if field.Multi() {
			posted := values[field.Name]
			for _, skill := range model.Skills() {
				changes = append(changes, form.SetSkill(skill, slices.Contains(posted, string(skill))))
			}
			continue
		}
		if _, ok := values[field.Name]; ok {
			changes = append(changes, form.SetField(field.Name, values.Get(field.Name)))
		}
	}
	return changes
}

// JSON API

func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.writeView(w, r, http.StatusOK, e.session.View())
}

func (s *Server) handleAPIPatch(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	payload, err := decodePayload(w, r)
	if err == nil && payload == nil {
		err = errEmptyBody
	}
	if err == nil {
		err = s.applyPayload(r, e, payload)
	}
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	s.writeView(w, r, http.StatusOK, e.session.View())
}

// handleAPISubmit applies an optional payload and submits. It answers 200
// with the summary view on acceptance and 422 with the errors otherwise.
func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	payload, err := decodePayload(w, r)
	if err == nil && payload != nil {
		err = s.applyPayload(r, e, payload)
	}
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}

	_, accepted, err := e.session.Submit()
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	code := http.StatusOK
	if !accepted {
		code = http.StatusUnprocessableEntity
	}
	s.writeView(w, r, code, e.session.View())
}

func (s *Server) handleAPIEdit(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.session.EditAgain(); err != nil {
		s.writeProblem(w, r, err)
		return
	}
	s.writeView(w, r, http.StatusOK, e.session.View())
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.Reset()
	s.writeView(w, r, http.StatusOK, e.session.View())
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := apispec.Document(r.Context())
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) applyPayload(r *http.Request, e *entry, payload map[string]any) error {
	if err := apispec.CheckPayload(r.Context(), payload); err != nil {
		return err
	}
	if err := e.session.Apply(changesFromPayload(payload)...); err != nil {
		if errors.Is(err, form.ErrInvalidTransition) {
			return err
		}
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}
	return nil
}

// decodePayload reads a JSON object body. An empty body yields a nil map.
func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, StatusError{Code: http.StatusRequestEntityTooLarge, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("server: decode body: %w", err)}
	}
	if payload == nil {
		return nil, errEmptyBody
	}
	return payload, nil
}

// changesFromPayload maps a checked payload onto change events. A skills
// array replaces the whole selection.
func changesFromPayload(payload map[string]any) []form.Change {
	var changes []form.Change
	for _, name := range model.FieldNames() {
		raw, ok := payload[name]
		if !ok {
			continue
		}
		if name == model.FieldAdditionalSkills {
			changes = append(changes, skillChanges(raw)...)
			continue
		}
		value, _ := raw.(string)
		changes = append(changes, form.SetField(name, value))
	}
	return changes
}

// skillChanges replaces the selection with the posted list. Every skill is
// cleared first and the posted ones are checked in list order, which is the
// order the summary shows them in.
func skillChanges(raw any) []form.Change {
	items, _ := raw.([]any)
	changes := make([]form.Change, 0, len(model.Skills())+len(items))
	for _, skill := range model.Skills() {
		changes = append(changes, form.SetSkill(skill, false))
	}
	for _, item := range items {
		if skill, ok := item.(string); ok {
			changes = append(changes, form.SetSkill(model.Skill(skill), true))
		}
	}
	return changes
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, code int, view form.View) {
	body, err := s.json.Render(r.Context(), view, render.RenderOptions{Title: s.title})
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	w.Header().Set("Content-Type", s.json.ContentType())
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func (s *Server) writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	s.logError(r, code, err)

	body := problem{Error: err.Error(), Field: problemField(err)}
	if code >= http.StatusInternalServerError {
		body = problem{Error: http.StatusText(code)}
	}
	data, encErr := s.json.Encode(body)
	if encErr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.json.ContentType())
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

// problemField names the first payload property a schema error points at.
func problemField(err error) string {
	var statusErr StatusError
	if errors.As(err, &statusErr) && statusErr.Field != "" {
		return statusErr.Field
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			return pointer[0]
		}
	}
	return ""
}

func (s *Server) logError(r *http.Request, code int, err error) {
	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", code),
		slog.String("error", err.Error()),
	)
}
