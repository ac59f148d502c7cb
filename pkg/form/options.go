package form

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-jobform/pkg/validation"
)

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the logger used to record submit outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the snapshot id generator.
func WithIDGenerator(next func() string) Option {
	return func(s *Session) {
		if next != nil {
			s.newID = next
		}
	}
}

// WithObserver registers an observer for submit attempts. May be repeated.
func WithObserver(observer Observer) Option {
	return func(s *Session) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// WithValidator replaces the rule set applied on submit.
func WithValidator(validate validation.Func) Option {
	return func(s *Session) {
		if validate != nil {
			s.validate = validate
		}
	}
}
