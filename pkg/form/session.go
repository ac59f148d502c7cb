package form

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/validation"
	"github.com/goliatone/go-jobform/pkg/visibility"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// session's current mode. The session is left untouched.
var ErrInvalidTransition = errors.New("form: invalid transition")

// Mode is the presenter state of a session.
type Mode int

const (
	ModeEditing Mode = iota
	ModeSubmitted
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Snapshot is the frozen copy of an accepted application.
type Snapshot struct {
	ID          string          `json:"id"`
	SubmittedAt time.Time       `json:"submittedAt"`
	State       model.FormState `json:"state"`
}

// Change is a single input event. For additionalSkills, Value names the skill
// and Checked carries the checkbox state; for every other field Value is the
// new text and Checked is ignored.
type Change struct {
	Field   string
	Value   string
	Checked bool
}

// SetField builds a text change event.
func SetField(field, value string) Change {
	return Change{Field: field, Value: value}
}

// SetSkill builds a checkbox change event.
func SetSkill(skill model.Skill, checked bool) Change {
	return Change{Field: model.FieldAdditionalSkills, Value: string(skill), Checked: checked}
}

// SubmitAttempt describes the outcome of a Submit call.
type SubmitAttempt struct {
	Accepted bool
	Errors   model.ErrorMap
	Snapshot Snapshot
}

// Observer is notified after every submit attempt.
type Observer interface {
	SubmitAttempt(attempt SubmitAttempt)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(SubmitAttempt)

func (f ObserverFunc) SubmitAttempt(attempt SubmitAttempt) {
	if f != nil {
		f(attempt)
	}
}

// Session owns one application form: its field values, the errors of the
// last submit attempt, the presenter mode and the accepted snapshot. All
// methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	observers []Observer
	validate  validation.Func

	mode     Mode
	state    model.FormState
	errors   model.ErrorMap
	snapshot *Snapshot
}

// New constructs a session in editing mode with blank fields.
func New(options ...Option) *Session {
	s := &Session{
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		newID:    uuid.NewString,
		validate: validation.Validate,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Change sets a text field. Only allowed while editing.
func (s *Session) Change(field, value string) error {
	return s.Apply(SetField(field, value))
}

// ToggleSkill checks or unchecks a skill. Only allowed while editing.
func (s *Session) ToggleSkill(skill model.Skill, checked bool) error {
	return s.Apply(SetSkill(skill, checked))
}

// Apply applies a batch of changes. Either every change is applied or, on the
// first failing event, none are.
func (s *Session) Apply(changes ...Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEditing {
		return fmt.Errorf("%w: cannot change fields while %s", ErrInvalidTransition, s.mode)
	}

	next := s.state
	for _, change := range changes {
		var err error
		if change.Field == model.FieldAdditionalSkills {
			next, err = next.WithSkill(model.Skill(change.Value), change.Checked)
		} else {
			next, err = next.With(change.Field, change.Value)
		}
		if err != nil {
			return fmt.Errorf("form: apply %s: %w", change.Field, err)
		}
	}
	s.state = next
	return nil
}

// Submit validates the current values. With no errors the session moves to
// submitted mode, captures a snapshot and resets the fields; otherwise the
// errors are stored and the values are kept. The returned map is a copy.
func (s *Session) Submit() (model.ErrorMap, bool, error) {
	s.mu.Lock()

	if s.mode != ModeEditing {
		mode := s.mode
		s.mu.Unlock()
		return nil, false, fmt.Errorf("%w: cannot submit while %s", ErrInvalidTransition, mode)
	}

	errs := s.validate(s.state.Clone())
	attempt := SubmitAttempt{Errors: errs.Clone()}

	if errs.Empty() {
		snapshot := Snapshot{
			ID:          s.newID(),
			SubmittedAt: s.now(),
			State:       s.state.Clone(),
		}
		s.snapshot = &snapshot
		s.state = model.FormState{}
		s.errors = nil
		s.mode = ModeSubmitted
		attempt.Accepted = true
		attempt.Snapshot = snapshot

		s.logger.Info("application accepted",
			slog.String("snapshot_id", snapshot.ID),
			slog.String("applying_for", string(snapshot.State.ApplyingFor)),
		)
		s.logger.Debug("application values", slog.Any("values", snapshot.State.Values()))
	} else {
		s.errors = errs.Clone()
		s.logger.Debug("application rejected", slog.Any("fields", errs.Fields()))
	}

	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, observer := range observers {
		observer.SubmitAttempt(attempt)
	}
	return errs.Clone(), attempt.Accepted, nil
}

// EditAgain discards the snapshot and returns to editing with blank fields.
func (s *Session) EditAgain() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeSubmitted {
		return fmt.Errorf("%w: nothing submitted to edit", ErrInvalidTransition)
	}
	s.snapshot = nil
	s.errors = nil
	s.state = model.FormState{}
	s.mode = ModeEditing
	return nil
}

// Reset returns the session to its initial state from any mode.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeEditing
	s.state = model.FormState{}
	s.errors = nil
	s.snapshot = nil
}

// Mode reports the current presenter mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State returns a copy of the editable values.
func (s *Session) State() model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Errors returns a copy of the errors from the last rejected submit.
func (s *Session) Errors() model.ErrorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.Clone()
}

// Snapshot returns the accepted application while in submitted mode.
func (s *Session) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	out := *s.snapshot
	out.State = out.State.Clone()
	return out, true
}

// View captures everything a renderer needs in one consistent read.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		Mode:   s.mode,
		State:  s.state.Clone(),
		Errors: s.errors.Clone(),
		Fields: visibility.Filter(model.Catalogue(), nil, s.state),
	}
	if s.snapshot != nil {
		snapshot := *s.snapshot
		snapshot.State = snapshot.State.Clone()
		view.Snapshot = &snapshot
		view.SummaryFields = visibility.Filter(model.Catalogue(), nil, snapshot.State)
	}
	return view
}
