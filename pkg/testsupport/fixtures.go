package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/model"
)

// DeveloperState returns a complete, valid application for the Developer
// position.
func DeveloperState() model.FormState {
	return model.FormState{
		FullName:               "Ada Lovelace",
		Email:                  "ada@example.com",
		PhoneNumber:            "555-0100",
		ApplyingFor:            model.RoleDeveloper,
		RelevantExperience:     "3",
		AdditionalSkills:       []model.Skill{model.SkillJavaScript, model.SkillPython},
		PreferredInterviewTime: "2026-11-02T10:30",
	}
}

// DesignerState returns a complete, valid application for the Designer
// position, including a portfolio link.
func DesignerState() model.FormState {
	return model.FormState{
		FullName:               "Grace Hopper",
		Email:                  "grace@example.com",
		PhoneNumber:            "555 0101",
		ApplyingFor:            model.RoleDesigner,
		RelevantExperience:     "5",
		PortfolioURL:           "https://grace.example.com/work",
		AdditionalSkills:       []model.Skill{model.SkillCSS},
		PreferredInterviewTime: "2026-11-03T14:00",
	}
}

// ManagerState returns a complete, valid application for the Manager position.
func ManagerState() model.FormState {
	return model.FormState{
		FullName:               "Katherine Johnson",
		Email:                  "kj@example.com",
		PhoneNumber:            "555-0102",
		ApplyingFor:            model.RoleManager,
		ManagementExperience:   "Led a team of 8 engineers",
		AdditionalSkills:       []model.Skill{model.SkillPython},
		PreferredInterviewTime: "2026-11-04T09:00",
	}
}

// FixedClock returns a clock function that always reports at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// SequenceIDs returns an id generator yielding prefix-1, prefix-2, ... and is
// safe for concurrent use.
func SequenceIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareState returns a diff string if the states differ.
func CompareState(want, got model.FormState) string {
	if want.Equal(got) {
		return ""
	}
	return cmp.Diff(want, got)
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
