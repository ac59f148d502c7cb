package model

import (
	"maps"
	"sort"
)

// ErrorMap maps a field name to a human-readable validation message. A
// missing key means the field is currently valid.
type ErrorMap map[string]string

// Has reports whether field has a message.
func (m ErrorMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// Message returns the message attached to field, or "".
func (m ErrorMap) Message(field string) string {
	return m[field]
}

// Empty reports whether no field carries a message.
func (m ErrorMap) Empty() bool {
	return len(m) == 0
}

// Clone returns an independent copy. Cloning an empty map yields nil.
func (m ErrorMap) Clone() ErrorMap {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

// Fields returns the names of invalid fields in catalogue order. Keys outside
// the catalogue are appended last in lexical order.
func (m ErrorMap) Fields() []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for _, field := range catalogue {
		if _, ok := m[field.Name]; ok {
			out = append(out, field.Name)
			seen[field.Name] = struct{}{}
		}
	}
	var extra []string
	for key := range m {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		out = append(out, extra...)
	}
	return out
}
