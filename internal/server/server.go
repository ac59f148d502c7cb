// Package server exposes job application sessions over HTTP: server-rendered
// HTML pages for browsers and a JSON API described by pkg/apispec.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-jobform/internal/ratelimit"
	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/renderers/html"
	"github.com/goliatone/go-jobform/pkg/renderers/jsonview"
)

const (
	// SessionCookie names the cookie carrying the session id.
	SessionCookie = "jobform_session"
	// CSRFField names the hidden input carrying the anti-forgery token.
	CSRFField = "_csrf"
	// AssetsPath is where the embedded stylesheet is served.
	AssetsPath = "/assets/"

	htmlRenderer = "html"
	jsonRenderer = "json"
)

// Server routes requests to per-client form sessions.
type Server struct {
	logger        *slog.Logger
	registry      *render.Registry
	title         string
	theme         *theme.RendererConfig
	sessionTTL    time.Duration
	maxSessions   int
	rateRPS       float64
	rateBurst     int
	secureCookies bool
	now           func() time.Time
	snapshotIDs   func() string
	promRegistry  *prometheus.Registry

	store   *sessionStore
	limiter *ratelimit.Limiter
	metrics *Metrics
	html    render.Renderer
	json    *jsonview.Renderer
	mux     *http.ServeMux
}

// New builds a server. Without WithRegistry it renders with the embedded
// HTML templates and the JSON view.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger:     slog.New(slog.DiscardHandler),
		sessionTTL: 30 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.registry == nil {
		registry, err := DefaultRegistry()
		if err != nil {
			return nil, err
		}
		s.registry = registry
	}
	htmlR, err := s.registry.Get(htmlRenderer)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	jsonR, err := s.registry.Get(jsonRenderer)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	jsonView, ok := jsonR.(*jsonview.Renderer)
	if !ok {
		return nil, errors.New("server: json renderer must be a *jsonview.Renderer")
	}
	s.html = htmlR
	s.json = jsonView

	s.metrics = NewMetrics(s.promRegistry)
	s.limiter = ratelimit.New(s.rateRPS, s.rateBurst, s.sessionTTL)
	s.store = newStore(s.sessionTTL, s.maxSessions, s.newSession, func(n int) {
		s.metrics.sessions.Set(float64(n))
	})
	s.mux = s.routes()
	return s, nil
}

// DefaultRegistry registers the embedded HTML renderer and the JSON view.
func DefaultRegistry() (*render.Registry, error) {
	htmlR, err := html.New(html.WithStylesheet(AssetsPath + html.DefaultStylesheet))
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(htmlR); err != nil {
		return nil, err
	}
	if err := registry.Register(jsonview.New()); err != nil {
		return nil, err
	}
	return registry, nil
}

// Handler returns the routed handler wrapped in logging and rate limiting.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.rateLimit(s.mux))
}

// Metrics exposes the collectors, mainly for tests.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// SweepSessions drops idle sessions. Callers run it on a ticker.
func (s *Server) SweepSessions() int {
	return s.store.Sweep(s.now())
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /{$}", s.handleFormPost)
	mux.HandleFunc("POST /edit", s.handleEditPost)

	mux.HandleFunc("GET /api/form", s.handleAPIView)
	mux.HandleFunc("PATCH /api/form", s.handleAPIPatch)
	mux.HandleFunc("POST /api/form/submit", s.handleAPISubmit)
	mux.HandleFunc("POST /api/form/edit", s.handleAPIEdit)
	mux.HandleFunc("POST /api/form/reset", s.handleAPIReset)

	mux.Handle("GET "+AssetsPath, http.StripPrefix(AssetsPath, http.FileServerFS(html.AssetsFS())))
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) newSession(id string) *form.Session {
	opts := []form.Option{
		form.WithLogger(s.logger.With(slog.String("session", id))),
		form.WithClock(s.now),
		form.WithObserver(s.metrics.Observer()),
	}
	if s.snapshotIDs != nil {
		opts = append(opts, form.WithIDGenerator(s.snapshotIDs))
	}
	return form.New(opts...)
}

func (s *Server) renderOptions(e *entry) render.RenderOptions {
	return render.RenderOptions{
		Action:       "/",
		EditAction:   "/edit",
		Title:        s.title,
		HiddenFields: render.MergeHiddenFields(nil, render.CSRFToken(CSRFField, e.csrf)),
		Theme:        s.theme,
	}
}
