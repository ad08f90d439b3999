// Package validation checks host function payloads against their registered
// JSON schemas before they reach a handler.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	sdkerrors "github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

const resourcePrefix = "mem://hostfuncs/"

// PayloadValidator validates payloads using schemas compiled from a
// ports.SchemaRegistry. It is safe for concurrent use once built.
type PayloadValidator struct {
	schemas map[string]*jsonschema.Schema
}

// NewPayloadValidator compiles every schema in registry.
func NewPayloadValidator(registry ports.SchemaRegistry) (*PayloadValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	names := registry.List()
	for _, name := range names {
		data, ok := registry.GetSchema(name)
		if !ok {
			continue
		}
		if err := compiler.AddResource(resourcePrefix+name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema resource for %s: %w", name, err)
		}
	}

	v := &PayloadValidator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		if _, ok := registry.GetSchema(name); !ok {
			continue
		}
		sch, err := compiler.Compile(resourcePrefix + name)
		if err != nil {
			return nil, fmt.Errorf("invalid schema for %s: %w", name, err)
		}
		v.schemas[name] = sch
	}
	return v, nil
}

// ValidatePayload returns a *errors.ValidationError when payload is not JSON
// or violates the schema of function. Functions without a schema pass.
func (v *PayloadValidator) ValidatePayload(function string, payload []byte) error {
	sch, ok := v.schemas[function]
	if !ok {
		return nil
	}

	var obj any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return &sdkerrors.ValidationError{Field: function, Err: fmt.Errorf("payload is not valid JSON: %w", err)}
	}

	if err := sch.Validate(obj); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &sdkerrors.ValidationError{Field: function, Err: errors.New(describe(ve))}
		}
		return &sdkerrors.ValidationError{Field: function, Err: err}
	}
	return nil
}

// Has reports whether a schema was compiled for function.
func (v *PayloadValidator) Has(function string) bool {
	_, ok := v.schemas[function]
	return ok
}

// describe flattens the deepest causes of a validation failure into one line.
func describe(ve *jsonschema.ValidationError) string {
	leaves := leafCauses(ve, nil)
	if len(leaves) == 0 {
		return ve.Message
	}
	var buf bytes.Buffer
	for i, l := range leaves {
		if i > 0 {
			buf.WriteString("; ")
		}
		loc := l.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		buf.WriteString(loc)
		buf.WriteString(": ")
		buf.WriteString(l.Message)
	}
	return buf.String()
}

func leafCauses(ve *jsonschema.ValidationError, out []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return append(out, ve)
	}
	for _, c := range ve.Causes {
		out = leafCauses(c, out)
	}
	return out
}
