package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ErrorDetail provides structured error information.
// Used across SDK operations and as wire protocol error format.
// Error Types: "network", "timeout", "config", "panic", "validation", "scope", "storage", "internal"
type ErrorDetail struct {
	// Wrapped contains a wrapped error for error chains.
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`

	// Details contains additional error context.
	Details map[string]any `json:"details,omitempty"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Type categorizes the error.
	Type string `json:"type"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`

	// Stack contains the stack trace for panic errors.
	Stack []byte `json:"stack,omitempty"`

	// IsTimeout indicates if this was a timeout error.
	IsTimeout bool `json:"is_timeout,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

// NewErrorDetail creates a new ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{
		Type:    errorType,
		Message: message,
	}
}

// WithDetails attaches details and returns the same ErrorDetail.
func (e *ErrorDetail) WithDetails(details map[string]any) *ErrorDetail {
	e.Details = details
	return e
}

// WithCode attaches a code and returns the same ErrorDetail.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}

// HostFault is the document a host returns when a call could not be dispatched
// at all: unknown function, malformed payload, or a recovered panic.
// Its "error" member is a string, which distinguishes it from regular responses
// whose "error" member is an ErrorDetail object.
type HostFault struct {
	// Error is a machine-readable error type identifier (e.g., "VALIDATION_ERROR").
	Error string `json:"error"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Code is a numeric error code (e.g., 400, 500).
	Code int `json:"code"`
}

// ToErrorDetail converts the fault into the common ErrorDetail shape.
func (f HostFault) ToErrorDetail() *ErrorDetail {
	typ := "internal"
	switch f.Error {
	case "VALIDATION_ERROR":
		typ = "validation"
	case "NOT_FOUND":
		typ = "host"
	}
	return &ErrorDetail{Message: f.Message, Type: typ, Code: f.Error}
}

// ParseHostFault reports whether reply is a dispatch fault. Faults carry a
// string "error" member; regular responses carry an object or nothing.
func ParseHostFault(reply []byte) (HostFault, bool) {
	var head struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(reply, &head); err != nil {
		return HostFault{}, false
	}
	if !bytes.HasPrefix(bytes.TrimSpace(head.Error), []byte(`"`)) {
		return HostFault{}, false
	}

	var fault HostFault
	if err := json.Unmarshal(reply, &fault); err != nil {
		return HostFault{}, false
	}
	return fault, true
}
