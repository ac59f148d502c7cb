package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnknownField is returned when an event names a field outside the
	// catalogue.
	ErrUnknownField = errors.New("model: unknown field")
	// ErrUnknownSkill is returned when a skill toggle names a value outside the
	// fixed skill set.
	ErrUnknownSkill = errors.New("model: unknown skill")
	// ErrUnknownRole is returned when applyingFor is set to a value that is not
	// one of the enumerated roles.
	ErrUnknownRole = errors.New("model: unknown role")
	// ErrNotTextField is returned when With targets the multi-valued skills
	// field; use WithSkill instead.
	ErrNotTextField = errors.New("model: field is not a text field")
)

// FormState holds the values of every form field. It is a value type: With
// and WithSkill return modified copies and never touch the receiver, so a
// state handed to a renderer or captured in a snapshot stays frozen.
type FormState struct {
	FullName               string  `json:"fullName"`
	Email                  string  `json:"email"`
	PhoneNumber            string  `json:"phoneNumber"`
	ApplyingFor            Role    `json:"applyingFor"`
	RelevantExperience     string  `json:"relevantExperience"`
	PortfolioURL           string  `json:"portfolioUrl"`
	ManagementExperience   string  `json:"managementExperience"`
	AdditionalSkills       []Skill `json:"additionalSkills"`
	PreferredInterviewTime string  `json:"preferredInterviewTime"`
}

// With returns a copy of s with the named text field set to value. Values are
// stored verbatim; trimming is the validator's concern.
func (s FormState) With(field, value string) (FormState, error) {
	next := s.Clone()
	switch field {
	case FieldFullName:
		next.FullName = value
	case FieldEmail:
		next.Email = value
	case FieldPhoneNumber:
		next.PhoneNumber = value
	case FieldApplyingFor:
		if value == "" {
			next.ApplyingFor = ""
			break
		}
		role, ok := ParseRole(value)
		if !ok {
			return s, fmt.Errorf("%w: %q", ErrUnknownRole, value)
		}
		next.ApplyingFor = role
	case FieldRelevantExperience:
		next.RelevantExperience = value
	case FieldPortfolioURL:
		next.PortfolioURL = value
	case FieldManagementExperience:
		next.ManagementExperience = value
	case FieldPreferredInterviewTime:
		next.PreferredInterviewTime = value
	case FieldAdditionalSkills:
		return s, fmt.Errorf("%w: %s", ErrNotTextField, field)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return next, nil
}

// WithSkill returns a copy of s with skill added (checked) or removed
// (unchecked). Re-checking a present skill or unchecking an absent one leaves
// the set unchanged. Newly checked skills are appended so the display join
// follows selection order.
func (s FormState) WithSkill(skill Skill, checked bool) (FormState, error) {
	if _, ok := ParseSkill(string(skill)); !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownSkill, skill)
	}
	next := s.Clone()
	present := slices.Contains(next.AdditionalSkills, skill)
	switch {
	case checked && !present:
		next.AdditionalSkills = append(next.AdditionalSkills, skill)
	case !checked && present:
		next.AdditionalSkills = slices.DeleteFunc(next.AdditionalSkills, func(candidate Skill) bool {
			return candidate == skill
		})
	}
	return next, nil
}

// HasSkill reports whether skill is selected.
func (s FormState) HasSkill(skill Skill) bool {
	return slices.Contains(s.AdditionalSkills, skill)
}

// SkillList returns a copy of the selected skills in selection order.
func (s FormState) SkillList() []Skill {
	return slices.Clone(s.AdditionalSkills)
}

// SkillLabels returns the selected skills as plain strings.
func (s FormState) SkillLabels() []string {
	out := make([]string, len(s.AdditionalSkills))
	for i, skill := range s.AdditionalSkills {
		out[i] = string(skill)
	}
	return out
}

// Value returns the raw text of a field. The skills field is rendered as the
// comma-separated join used by the summary view.
func (s FormState) Value(field string) string {
	switch field {
	case FieldFullName:
		return s.FullName
	case FieldEmail:
		return s.Email
	case FieldPhoneNumber:
		return s.PhoneNumber
	case FieldApplyingFor:
		return string(s.ApplyingFor)
	case FieldRelevantExperience:
		return s.RelevantExperience
	case FieldPortfolioURL:
		return s.PortfolioURL
	case FieldManagementExperience:
		return s.ManagementExperience
	case FieldAdditionalSkills:
		return strings.Join(s.SkillLabels(), ", ")
	case FieldPreferredInterviewTime:
		return s.PreferredInterviewTime
	default:
		return ""
	}
}

// Values projects the state into a map keyed by field name. Text fields map
// to strings and additionalSkills to a []string.
func (s FormState) Values() map[string]any {
	out := make(map[string]any, len(catalogue))
	for _, field := range catalogue {
		if field.Multi() {
			out[field.Name] = s.SkillLabels()
			continue
		}
		out[field.Name] = s.Value(field.Name)
	}
	return out
}

// Clone returns a deep copy of s.
func (s FormState) Clone() FormState {
	s.AdditionalSkills = slices.Clone(s.AdditionalSkills)
	return s
}

// IsZero reports whether every field holds its default value.
func (s FormState) IsZero() bool {
	return s.Equal(FormState{})
}

// Equal compares two states field by field. A nil and an empty skill set are
// considered equal.
func (s FormState) Equal(other FormState) bool {
	if !slices.Equal(s.AdditionalSkills, other.AdditionalSkills) {
		return false
	}
	for _, field := range catalogue {
		if field.Multi() {
			continue
		}
		if s.Value(field.Name) != other.Value(field.Name) {
			return false
		}
	}
	return true
}
