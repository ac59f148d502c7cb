package form

import "github.com/goliatone/go-jobform/pkg/model"

// View is a read-only projection of a session for renderers. Fields lists the
// inputs visible for the current values; SummaryFields lists the entries of
// the snapshot summary and is empty while editing.
type View struct {
	Mode          Mode            `json:"mode"`
	State         model.FormState `json:"state"`
	Errors        model.ErrorMap  `json:"errors,omitempty"`
	Fields        []model.Field   `json:"fields"`
	Snapshot      *Snapshot       `json:"snapshot,omitempty"`
	SummaryFields []model.Field   `json:"summaryFields,omitempty"`
}

// Submitted reports whether the view shows an accepted application.
func (v View) Submitted() bool {
	return v.Mode == ModeSubmitted && v.Snapshot != nil
}

// SummaryValue returns the snapshot text for field, with the catalogue
// suffix applied. Blank values are returned as-is.
func (v View) SummaryValue(field model.Field) string {
	if v.Snapshot == nil {
		return ""
	}
	value := v.Snapshot.State.Value(field.Name)
	if value == "" {
		return ""
	}
	return value + field.SummarySuffix
}

// NewView builds a view for state outside of a session, mainly for previews
// and tests.
func NewView(state model.FormState, errs model.ErrorMap) View {
	s := New()
	s.state = state.Clone()
	s.errors = errs.Clone()
	return s.View()
}
