package hostfuncs

import (
	stdErrors "errors"
	"testing"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse_ToJSON(t *testing.T) {
	tests := []struct {
		name     string
		err      ErrorResponse
		expected string
	}{
		{
			name: "validation error",
			err: ErrorResponse{
				Error:   "VALIDATION_ERROR",
				Message: "invalid JSON",
				Code:    400,
			},
			expected: `{"error":"VALIDATION_ERROR","message":"invalid JSON","code":400}`,
		},
		{
			name: ErrorResponse{
				Error:   "NOT_FOUND",
				Message: "unknown host function: foo",
				Code:    404,
			}.Error,
			err: ErrorResponse{
				Error:   "NOT_FOUND",
				Message: "unknown host function: foo",
				Code:    404,
			},
			expected: `{"error":"NOT_FOUND","message":"unknown host function: foo","code":404}`,
		},
		{
			name: "internal error",
			err: ErrorResponse{
				Error:   "INTERNAL_ERROR",
				Message: "panic: oh no",
				Code:    500,
			},
			expected: `{"error":"INTERNAL_ERROR","message":"panic: oh no","code":500}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.ToJSON()
			require.NotNil(t, got)
			assert.JSONEq(t, tt.expected, string(got))
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("failed to unmarshal request")
	assert.Equal(t, "VALIDATION_ERROR", err.Error)
	assert.Equal(t, "failed to unmarshal request", err.Message)
	assert.Equal(t, 400, err.Code)
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("requests_replay")
	assert.Equal(t, "NOT_FOUND", err.Error)
	assert.Equal(t, "unknown host function: requests_replay", err.Message)
	assert.Equal(t, 404, err.Code)
}

func TestNewInternalError(t *testing.T) {
	err := NewInternalError("findings store unavailable")
	assert.Equal(t, "INTERNAL_ERROR", err.Error)
	assert.Equal(t, "findings store unavailable", err.Message)
	assert.Equal(t, 500, err.Code)
}

func TestNewPanicError(t *testing.T) {
	tests := []struct {
		name       string
		panicValue any
		wantMsg    string
	}{
		{
			name:       "string panic",
			panicValue: "oops",
			wantMsg:    "panic: oops",
		},
		{
			name:       "error panic",
			panicValue: &errors.StorageError{Operation: "create", Err: stdErrors.New("database is locked")},
			wantMsg:    "panic: storage create failed: database is locked",
		},
		{
			name:       "other panic",
			panicValue: 42,
			wantMsg:    "panic: panic recovered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPanicError(tt.panicValue)
			assert.Equal(t, "INTERNAL_ERROR", err.Error)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, 500, err.Code)
		})
	}
}

func TestErrorResponse_ToErrorDetail(t *testing.T) {
	tests := []struct {
		name     string
		err      ErrorResponse
		wantType string
	}{
		{name: "validation", err: NewValidationError("bad"), wantType: "validation"},
		{name: "not found", err: NewNotFoundError("nope"), wantType: "host"},
		{name: "internal", err: NewInternalError("broken"), wantType: "internal"},
		{name: "panic", err: NewPanicError("oops"), wantType: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := entities.HostFault(tt.err).ToErrorDetail()
			assert.Equal(t, tt.wantType, detail.Type)
			assert.Equal(t, tt.err.Error, detail.Code)
			assert.Equal(t, tt.err.Message, detail.Message)
		})
	}
}
