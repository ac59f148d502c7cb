// Package apispec publishes the OpenAPI description of the JSON API and uses
// its payload schema to reject structurally invalid change requests before
// they reach a form session.
package apispec

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawDocument []byte

// PayloadSchemaName is the component holding the change request schema.
const PayloadSchemaName = "ApplicationPatch"

// ErrInvalidPayload wraps structural violations reported by CheckPayload.
var ErrInvalidPayload = errors.New("apispec: invalid payload")

var (
	loadOnce sync.Once
	loaded   *openapi3.T
	loadErr  error
)

// Raw returns the embedded YAML document.
func Raw() []byte {
	out := make([]byte, len(rawDocument))
	copy(out, rawDocument)
	return out
}

// Document loads and validates the embedded description. The result is
// shared; callers must not mutate it.
func Document(ctx context.Context) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loadOnce.Do(func() {
		loader := &openapi3.Loader{Context: ctx}
		doc, err := loader.LoadFromData(rawDocument)
		if err != nil {
			loadErr = fmt.Errorf("apispec: load document: %w", err)
			return
		}
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			loadErr = fmt.Errorf("apispec: validate: %w", err)
			return
		}
		loaded = doc
	})
	return loaded, loadErr
}

// PayloadSchema returns the resolved change request schema.
func PayloadSchema(ctx context.Context) (*openapi3.Schema, error) {
	doc, err := Document(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Components == nil {
		return nil, errors.New("apispec: document has no components")
	}
	ref := doc.Components.Schemas[PayloadSchemaName]
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("apispec: schema %q not found", PayloadSchemaName)
	}
	return ref.Value, nil
}

// CheckPayload validates a decoded JSON object against the change request
// schema: only known fields, string values, a known role (or "") and known,
// unique skills.
func CheckPayload(ctx context.Context, payload map[string]any) error {
	schema, err := PayloadSchema(ctx)
	if err != nil {
		return err
	}
	if err := schema.VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}
