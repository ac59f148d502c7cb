package tui

import (
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/visibility"
)

// Format serializes an accepted application in the configured output format.
// Only the fields that apply to the submitted role are emitted.
func (r *Renderer) Format(snapshot form.Snapshot) ([]byte, error) {
	fields := visibility.Fields(snapshot.State.ApplyingFor)

	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		values := url.Values{}
		values.Set("id", snapshot.ID)
		for _, field := range fields {
			if field.Multi() {
				for _, label := range snapshot.State.SkillLabels() {
					values.Add(field.Name, label)
				}
				continue
			}
			values.Set(field.Name, snapshot.State.Value(field.Name))
		}
		return []byte(values.Encode()), nil

	case OutputFormatPrettyText:
		view := form.View{
			Mode:          form.ModeSubmitted,
			Snapshot:      &snapshot,
			SummaryFields: fields,
		}
		return []byte(r.summaryText(view)), nil

	default:
		values := make(map[string]any, len(fields))
		for _, field := range fields {
			if field.Multi() {
				values[field.Name] = snapshot.State.SkillLabels()
				continue
			}
			values[field.Name] = snapshot.State.Value(field.Name)
		}
		payload := struct {
			ID          string         `json:"id"`
			SubmittedAt string         `json:"submittedAt"`
			Values      map[string]any `json:"values"`
		}{
			ID:          snapshot.ID,
			SubmittedAt: snapshot.SubmittedAt.UTC().Format(time.RFC3339),
			Values:      values,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("tui: marshal snapshot: %w", err)
		}
		return data, nil
	}
}
