// Package visibility holds the single predicate deciding which role-dependent
// fields apply to an application. The validator, the editable view and the
// summary view all consult it, so the three cannot drift apart.
package visibility

import (
	"slices"

	"github.com/goliatone/go-jobform/pkg/model"
)

// Evaluator determines whether a field applies to the given form state.
type Evaluator interface {
	Applies(field string, state model.FormState) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field string, state model.FormState) bool

// Applies delegates to the underlying function.
func (fn EvaluatorFunc) Applies(field string, state model.FormState) bool {
	return fn(field, state)
}

// roleRules lists the roles for which each conditional field applies. Fields
// missing from the table apply regardless of role.
var roleRules = map[string][]model.Role{
	model.FieldRelevantExperience:   {model.RoleDeveloper, model.RoleDesigner},
	model.FieldPortfolioURL:         {model.RoleDesigner},
	model.FieldManagementExperience: {model.RoleManager},
}

// Default returns the role-keyed evaluator backed by Applies.
func Default() Evaluator {
	return EvaluatorFunc(func(field string, state model.FormState) bool {
		return Applies(field, state.ApplyingFor)
	})
}

// Applies reports whether field is shown, validated and summarised for role.
func Applies(field string, role model.Role) bool {
	roles, conditional := roleRules[field]
	if !conditional {
		return true
	}
	return slices.Contains(roles, role)
}

// Conditional reports whether field depends on the selected role.
func Conditional(field string) bool {
	_, ok := roleRules[field]
	return ok
}

// Fields returns the catalogue entries that apply to role, in display order.
func Fields(role model.Role) []model.Field {
	return Filter(model.Catalogue(), Default(), model.FormState{ApplyingFor: role})
}

// Filter keeps the fields the evaluator accepts for state. A nil evaluator
// falls back to Default.
func Filter(fields []model.Field, evaluator Evaluator, state model.FormState) []model.Field {
	if len(fields) == 0 {
		return nil
	}
	if evaluator == nil {
		evaluator = Default()
	}
	out := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		if !evaluator.Applies(field.Name, state) {
			continue
		}
		out = append(out, field)
	}
	return out
}
