package sdk

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/proxyscript/script-sdk/go/domain/errors"
)

// Body is an immutable request or response payload.
type Body struct {
	data []byte
}

// NewBody copies b into a new Body.
func NewBody(b Bytes) *Body {
	return &Body{data: bytes.Clone([]byte(b))}
}

// Raw returns a copy of the body bytes.
func (b *Body) Raw() Bytes {
	if b == nil {
		return nil
	}
	return bytes.Clone(b.data)
}

// Len returns the body size in bytes.
func (b *Body) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Text decodes the body as UTF-8, replacing invalid sequences with U+FFFD.
func (b *Body) Text() string {
	if b == nil {
		return ""
	}
	return AsString(b.data)
}

// JSON decodes the body into generic JSON values (map[string]any, []any,
// float64, string, bool or nil).
func (b *Body) JSON() (any, error) {
	var v any
	if err := b.DecodeJSON(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeJSON unmarshals the body into v. Malformed JSON yields a *SyntaxError.
func (b *Body) DecodeJSON(v any) error {
	var data []byte
	if b != nil {
		data = b.data
	}

	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var synErr *json.SyntaxError
	if stdErrors.As(err, &synErr) {
		return &errors.SyntaxError{Err: err, Offset: synErr.Offset}
	}
	return fmt.Errorf("failed to decode body: %w", err)
}
