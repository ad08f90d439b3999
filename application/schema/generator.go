// Package schema generates JSON schemas for host function payloads and keeps
// them in a registry the bridge and the payload validator read from.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// newReflector returns a reflector that inlines every definition, so each
// generated document is self-contained and can be compiled on its own.
func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
}

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
// Fields without `omitempty` are required and unknown properties are rejected.
func GenerateSchema(v any) ([]byte, error) {
	schema := newReflector().Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}
