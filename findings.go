package sdk

import (
	"context"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// Findings reports findings to the host.
type Findings struct {
	invoker ports.HostInvoker
}

// NewFindings creates a Findings facade on top of invoker.
func NewFindings(invoker ports.HostInvoker) *Findings {
	return &Findings{invoker: invoker}
}

// Create validates spec and asks the host to save it. Nothing is saved when
// an error is returned; the error is an *OperationError.
func (f *Findings) Create(ctx context.Context, spec FindingSpec) (*Finding, error) {
	if err := ValidateStruct(spec); err != nil {
		return nil, &errors.OperationError{Op: "create finding", Err: err}
	}

	req := entities.CreateFindingRequest{
		Request:     spec.Request.Wire(),
		Title:       spec.Title,
		Description: spec.Description,
		Reporter:    spec.Reporter,
	}
	resp, err := call[entities.CreateFindingRequest, entities.CreateFindingResponse](ctx, f.invoker, entities.FuncFindingsCreate, req)
	if err != nil {
		return nil, operationError("create finding", err)
	}
	if resp.Error != nil {
		return nil, operationError("create finding", resp.Error)
	}
	if resp.Finding == nil {
		return nil, operationError("create finding", malformedReply(entities.FuncFindingsCreate, "finding"))
	}
	return FindingFromWire(*resp.Finding), nil
}
