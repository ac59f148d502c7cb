package server

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-jobform/pkg/render"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry supplies the renderers. It must hold an "html" and a "json"
// renderer.
func WithRegistry(registry *render.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithTitle overrides the page heading.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithTheme applies a resolved go-theme configuration to every page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxSessions caps the number of live sessions. Zero means unlimited.
func WithMaxSessions(max int) Option {
	return func(s *Server) {
		if max >= 0 {
			s.maxSessions = max
		}
	}
}

// WithRateLimit enables per-client rate limiting. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateRPS = rps
		s.rateBurst = burst
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSnapshotIDs replaces the snapshot id generator of new sessions.
func WithSnapshotIDs(next func() string) Option {
	return func(s *Server) {
		s.snapshotIDs = next
	}
}

// WithPrometheusRegistry registers the metrics on registry instead of a
// private one.
func WithPrometheusRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.promRegistry = registry
	}
}
