package model

import "strings"

// Role is the enumerated value of the applyingFor field. The zero value means
// no position has been selected yet.
type Role string

const (
	RoleDeveloper Role = "Developer"
	RoleDesigner  Role = "Designer"
	RoleManager   Role = "Manager"
)

// Roles returns the selectable positions in display order.
func Roles() []Role {
	return []Role{RoleDeveloper, RoleDesigner, RoleManager}
}

// ParseRole resolves a raw value into a Role. Matching is exact, mirroring the
// option values of the position dropdown.
func ParseRole(raw string) (Role, bool) {
	for _, role := range Roles() {
		if string(role) == raw {
			return role, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Skill is one of the fixed additional skill labels.
type Skill string

const (
	SkillJavaScript Skill = "JavaScript"
	SkillCSS        Skill = "CSS"
	SkillPython     Skill = "Python"
)

// Skills returns the selectable skills in display order.
func Skills() []Skill {
	return []Skill{SkillJavaScript, SkillCSS, SkillPython}
}

// ParseSkill resolves a raw checkbox value into a Skill.
func ParseSkill(raw string) (Skill, bool) {
	for _, skill := range Skills() {
		if string(skill) == raw {
			return skill, true
		}
	}
	return "", false
}

// Field names, matching the wire keys used by form posts and JSON bodies.
const (
	FieldFullName               = "fullName"
	FieldEmail                  = "email"
	FieldPhoneNumber            = "phoneNumber"
	FieldApplyingFor            = "applyingFor"
	FieldRelevantExperience     = "relevantExperience"
	FieldPortfolioURL           = "portfolioUrl"
	FieldManagementExperience   = "managementExperience"
	FieldAdditionalSkills       = "additionalSkills"
	FieldPreferredInterviewTime = "preferredInterviewTime"
)

// InputType names the control a renderer should emit for a field.
type InputType string

const (
	InputText          InputType = "text"
	InputEmail         InputType = "email"
	InputTel           InputType = "tel"
	InputSelect        InputType = "select"
	InputNumber        InputType = "number"
	InputURL           InputType = "url"
	InputTextArea      InputType = "textarea"
	InputCheckboxGroup InputType = "checkbox-group"
	InputDateTime      InputType = "datetime-local"
)

// Option is a selectable value for select and checkbox-group inputs.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes a single input of the application form. SummaryLabel and
// SummarySuffix control how the read-only summary presents the value.
type Field struct {
	Name          string    `json:"name"`
	Label         string    `json:"label"`
	Input         InputType `json:"input"`
	Placeholder   string    `json:"placeholder,omitempty"`
	Options       []Option  `json:"options,omitempty"`
	SummaryLabel  string    `json:"summaryLabel,omitempty"`
	SummarySuffix string    `json:"summarySuffix,omitempty"`
}

// DisplayLabel returns the label used by the summary view, falling back to the
// form label.
func (f Field) DisplayLabel() string {
	if strings.TrimSpace(f.SummaryLabel) != "" {
		return f.SummaryLabel
	}
	return f.Label
}

// Multi reports whether the field holds a set of values.
func (f Field) Multi() bool {
	return f.Input == InputCheckboxGroup
}

var catalogue = []Field{
	{Name: FieldFullName, Label: "Full Name", Input: InputText},
	{Name: FieldEmail, Label: "Email", Input: InputEmail},
	{Name: FieldPhoneNumber, Label: "Phone Number", Input: InputTel},
	{
		Name:        FieldApplyingFor,
		Label:       "Applying for Position",
		Input:       InputSelect,
		Placeholder: "Select Position",
		Options:     roleOptions(),
	},
	{
		Name:          FieldRelevantExperience,
		Label:         "Relevant Experience (years)",
		Input:         InputNumber,
		SummaryLabel:  "Relevant Experience",
		SummarySuffix: " years",
	},
	{Name: FieldPortfolioURL, Label: "Portfolio URL", Input: InputURL},
	{Name: FieldManagementExperience, Label: "Management Experience", Input: InputTextArea},
	{
		Name:    FieldAdditionalSkills,
		Label:   "Additional Skills",
		Input:   InputCheckboxGroup,
		Options: skillOptions(),
	},
	{Name: FieldPreferredInterviewTime, Label: "Preferred Interview Time", Input: InputDateTime},
}

// Catalogue returns every field of the form in display order. The slice is a
// copy; callers may reorder or filter it freely.
func Catalogue() []Field {
	out := make([]Field, len(catalogue))
	for i, field := range catalogue {
		field.Options = append([]Option(nil), field.Options...)
		out[i] = field
	}
	return out
}

// Lookup returns the catalogue entry for name.
func Lookup(name string) (Field, bool) {
	for _, field := range catalogue {
		if field.Name == name {
			field.Options = append([]Option(nil), field.Options...)
			return field, true
		}
	}
	return Field{}, false
}

// FieldNames returns the catalogue field names in display order.
func FieldNames() []string {
	out := make([]string, len(catalogue))
	for i, field := range catalogue {
		out[i] = field.Name
	}
	return out
}

func roleOptions() []Option {
	roles := Roles()
	out := make([]Option, len(roles))
	for i, role := range roles {
		out[i] = Option{Value: string(role), Label: string(role)}
	}
	return out
}

func skillOptions() []Option {
	skills := Skills()
	out := make([]Option, len(skills))
	for i, skill := range skills {
		out[i] = Option{Value: string(skill), Label: string(skill)}
	}
	return out
}
