// Package validation implements the application form rules. Validate is pure
// and total: every rule runs independently, all failures are collected, and no
// input makes it panic or return an error.
package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/visibility"
)

// Messages surfaced next to invalid fields.
const (
	MsgFullNameRequired               = "Full Name is required"
	MsgEmailRequired                  = "Email is required"
	MsgEmailInvalid                   = "Invalid email format"
	MsgPhoneRequired                  = "Phone Number is required"
	MsgPhoneInvalid                   = "Invalid phone number format"
	MsgApplyingForRequired            = "Applying for Position is required"
	MsgExperienceRequired             = "Relevant Experience is required"
	MsgExperiencePositive             = "Relevant Experience must be greater than 0"
	MsgPortfolioRequired              = "Portfolio URL is required"
	MsgPortfolioInvalid               = "Invalid URL format"
	MsgManagementExperienceRequired   = "Management Experience is required"
	MsgSkillsRequired                 = "At least one skill must be selected"
	MsgPreferredInterviewTimeRequired = "Preferred Interview Time is required"
)

// whitespace is the character class browsers treat as white space in form
// patterns. RE2's \s alone is ASCII-only, so the Unicode separators, the
// vertical tab and the byte order mark are listed as well.
const whitespace = `\s\v\p{Z}\x{FEFF}`

// Patterns applied to non-blank values. Email and URL checks are deliberately
// loose; they only catch obviously malformed input.
var (
	EmailPattern = regexp.MustCompile(`[^` + whitespace + `]+@[^` + whitespace + `]+\.[^` + whitespace + `]+`)
	PhonePattern = regexp.MustCompile(`^[0-9` + whitespace + `-]+$`)
	URLPattern   = regexp.MustCompile(`^(ftp|http|https)://[^ "]+$`)
)

// Func is the validator signature consumed by form sessions.
type Func func(model.FormState) model.ErrorMap

type rule func(state model.FormState) (field, message string)

var rules = []rule{
	checkFullName,
	checkEmail,
	checkPhone,
	checkApplyingFor,
	checkRelevantExperience,
	checkPortfolio,
	checkManagementExperience,
	checkSkills,
	checkInterviewTime,
}

// Validate runs every rule against state and returns the collected messages.
// The result is nil when the state is valid.
func Validate(state model.FormState) model.ErrorMap {
	var errs model.ErrorMap
	for _, check := range rules {
		field, message := check(state)
		if message == "" {
			continue
		}
		if errs == nil {
			errs = make(model.ErrorMap)
		}
		errs[field] = message
	}
	return errs
}

// ParseExperience coerces the relevant experience text the way a browser
// number coercion does: blank input is 0, well-formed decimal, exponent,
// hex/octal/binary literals and Infinity parse, and anything else is NaN.
func ParseExperience(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	switch trimmed {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if strings.ContainsAny(trimmed, "_") {
		return math.NaN()
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		n, err := strconv.ParseUint(trimmed, 0, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if strings.ContainsAny(lower, "xpn") || strings.Contains(lower, "inf") {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func checkFullName(state model.FormState) (string, string) {
	if blank(state.FullName) {
		return model.FieldFullName, MsgFullNameRequired
	}
	return model.FieldFullName, ""
}

func checkEmail(state model.FormState) (string, string) {
	switch {
	case blank(state.Email):
		return model.FieldEmail, MsgEmailRequired
	case !EmailPattern.MatchString(state.Email):
		return model.FieldEmail, MsgEmailInvalid
	}
	return model.FieldEmail, ""
}

func checkPhone(state model.FormState) (string, string) {
	switch {
	case blank(state.PhoneNumber):
		return model.FieldPhoneNumber, MsgPhoneRequired
	case !PhonePattern.MatchString(state.PhoneNumber):
		return model.FieldPhoneNumber, MsgPhoneInvalid
	}
	return model.FieldPhoneNumber, ""
}

func checkApplyingFor(state model.FormState) (string, string) {
	if !state.ApplyingFor.Valid() {
		return model.FieldApplyingFor, MsgApplyingForRequired
	}
	return model.FieldApplyingFor, ""
}

func checkRelevantExperience(state model.FormState) (string, string) {
	if !visibility.Applies(model.FieldRelevantExperience, state.ApplyingFor) {
		return model.FieldRelevantExperience, ""
	}
	if blank(state.RelevantExperience) {
		return model.FieldRelevantExperience, MsgExperienceRequired
	}
	// NaN fails the comparison too, so malformed numbers share this message.
	if !(ParseExperience(state.RelevantExperience) > 0) {
		return model.FieldRelevantExperience, MsgExperiencePositive
	}
	return model.FieldRelevantExperience, ""
}

func checkPortfolio(state model.FormState) (string, string) {
	if !visibility.Applies(model.FieldPortfolioURL, state.ApplyingFor) {
		return model.FieldPortfolioURL, ""
	}
	switch {
	case blank(state.PortfolioURL):
		return model.FieldPortfolioURL, MsgPortfolioRequired
	case !URLPattern.MatchString(state.PortfolioURL):
		return model.FieldPortfolioURL, MsgPortfolioInvalid
	}
	return model.FieldPortfolioURL, ""
}

func checkManagementExperience(state model.FormState) (string, string) {
	if !visibility.Applies(model.FieldManagementExperience, state.ApplyingFor) {
		return model.FieldManagementExperience, ""
	}
	if blank(state.ManagementExperience) {
		return model.FieldManagementExperience, MsgManagementExperienceRequired
	}
	return model.FieldManagementExperience, ""
}

func checkSkills(state model.FormState) (string, string) {
	if len(state.AdditionalSkills) == 0 {
		return model.FieldAdditionalSkills, MsgSkillsRequired
	}
	return model.FieldAdditionalSkills, ""
}

func checkInterviewTime(state model.FormState) (string, string) {
	if blank(state.PreferredInterviewTime) {
		return model.FieldPreferredInterviewTime, MsgPreferredInterviewTimeRequired
	}
	return model.FieldPreferredInterviewTime, ""
}
