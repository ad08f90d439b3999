package sdk

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// ErrNoHost is returned when an SDK is used without a host invoker.
var ErrNoHost = stdErrors.New("sdk: no host attached")

// call marshals req, invokes the named host function and decodes the reply.
// A HostFault reply is returned as an *ErrorDetail error.
func call[Req, Resp any](ctx context.Context, invoker ports.HostInvoker, name string, req Req) (Resp, error) {
	var resp Resp
	if invoker == nil {
		return resp, ErrNoHost
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return resp, &errors.WireFormatError{Operation: "marshal", Type: name, Err: err}
	}

	reply, err := invoker.Invoke(ctx, name, payload)
	if err != nil {
		return resp, err
	}

	if fault, ok := entities.ParseHostFault(reply); ok {
		return resp, fault.ToErrorDetail()
	}

	if err := json.Unmarshal(reply, &resp); err != nil {
		return resp, &errors.WireFormatError{Operation: "unmarshal", Type: name, Err: err}
	}
	return resp, nil
}

// operationError wraps a failed call into an *OperationError, keeping host
// details reachable through errors.As.
func operationError(op string, err error) error {
	var detail *entities.ErrorDetail
	if stdErrors.As(err, &detail) {
		return &errors.OperationError{Op: op, Detail: detail}
	}
	return &errors.OperationError{Op: op, Err: err}
}

func malformedReply(name, missing string) error {
	return &errors.WireFormatError{
		Operation: "unmarshal",
		Type:      name,
		Err:       fmt.Errorf("reply is missing %s", missing),
	}
}
