package sdk

import (
	"context"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// Sendable is a pending request: *RequestSpec or *RequestSpecRaw.
type Sendable interface {
	sendRequest() entities.SendRequest
}

// Scopable is anything a scope check accepts: *Request or *RequestSpec.
type Scopable interface {
	scopeTarget() entities.ScopeTarget
}

var (
	_ Sendable = (*RequestSpec)(nil)
	_ Sendable = (*RequestSpecRaw)(nil)
	_ Scopable = (*Request)(nil)
	_ Scopable = (*RequestSpec)(nil)
)

// Requests sends requests through the host and checks them against scope.
type Requests struct {
	invoker ports.HostInvoker
}

// NewRequests creates a Requests facade on top of invoker.
func NewRequests(invoker ports.HostInvoker) *Requests {
	return &Requests{invoker: invoker}
}

// Send asks the host to send the request and waits for the response.
// Failures are returned as *OperationError.
func (r *Requests) Send(ctx context.Context, req Sendable) (*RequestResponse, error) {
	if nilSendable(req) {
		return nil, &errors.OperationError{Op: "send", Detail: entities.NewErrorDetail("validation", "request is nil")}
	}
	resp, err := call[entities.SendRequest, entities.SendResponse](ctx, r.invoker, entities.FuncRequestsSend, req.sendRequest())
	if err != nil {
		return nil, operationError("send", err)
	}
	if resp.Error != nil {
		return nil, operationError("send", resp.Error)
	}
	if resp.Request == nil || resp.Response == nil {
		return nil, operationError("send", malformedReply(entities.FuncRequestsSend, "request or response"))
	}
	return NewRequestResponse(RequestFromWire(*resp.Request), ResponseFromWire(*resp.Response)), nil
}

// InScope reports whether the host considers req in scope. It never fails:
// when the host cannot answer, the request is treated as out of scope.
func (r *Requests) InScope(req Scopable) bool {
	if nilScopable(req) {
		return false
	}
	resp, err := call[entities.ScopeCheckRequest, entities.ScopeCheckResponse](
		context.Background(), r.invoker, entities.FuncRequestsScope,
		entities.ScopeCheckRequest{Target: req.scopeTarget()},
	)
	if err != nil || resp.Error != nil {
		return false
	}
	return resp.InScope
}

func nilSendable(req Sendable) bool {
	switch v := req.(type) {
	case nil:
		return true
	case *RequestSpec:
		return v == nil
	case *RequestSpecRaw:
		return v == nil
	}
	return false
}

func nilScopable(req Scopable) bool {
	switch v := req.(type) {
	case nil:
		return true
	case *Request:
		return v == nil
	case *RequestSpec:
		return v == nil
	}
	return false
}
