// Package sdk is the Go scripting SDK for the proxy host. Scripts receive an
// *SDK bound to the host that invoked them and use it to log, send requests,
// check scope and report findings.
package sdk

import (
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
)

// ErrorDetail is re-exported from entities for convenience.
// Error Types: "network", "timeout", "config", "panic", "validation", "scope", "storage", "host", "internal"
type ErrorDetail = entities.ErrorDetail

// SyntaxError is returned by Body.JSON and Body.DecodeJSON for invalid JSON.
type SyntaxError = errors.SyntaxError

// OperationError is the rejection of Requests.Send and Findings.Create.
type OperationError = errors.OperationError

// ToErrorDetail converts a Go error to the structured ErrorDetail.
func ToErrorDetail(err error) *ErrorDetail {
	return errors.ToErrorDetail(err)
}
