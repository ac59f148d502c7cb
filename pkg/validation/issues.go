package validation

import "github.com/goliatone/go-jobform/pkg/model"

// Issue is a single validation failure with the label of the offending field,
// ready for JSON responses and terminal output.
type Issue struct {
	Field   string `json:"field"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}

// Issues flattens errs into a slice ordered by the field catalogue.
func Issues(errs model.ErrorMap) []Issue {
	fields := errs.Fields()
	if len(fields) == 0 {
		return nil
	}
	out := make([]Issue, 0, len(fields))
	for _, name := range fields {
		issue := Issue{Field: name, Message: errs.Message(name)}
		if field, ok := model.Lookup(name); ok {
			issue.Label = field.Label
		}
		out = append(out, issue)
	}
	return out
}
