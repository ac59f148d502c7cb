// Package model defines the job application form: the field catalogue that
// renderers walk in display order, the FormState value edited by input events,
// and the ErrorMap produced by the validator. FormState is a value type; every
// edit returns a new copy so views and snapshots never alias live state.
// Field names match the camelCase keys used on the wire (form posts, JSON
// bodies) so transports can bind events without a translation table.
package model
