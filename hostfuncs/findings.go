package hostfuncs

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

var validate = validator.New()

// PerformCreateFinding validates the request and saves the finding.
// Nothing is stored when an error is returned.
func PerformCreateFinding(ctx context.Context, store ports.FindingStore, req entities.CreateFindingRequest) entities.CreateFindingResponse {
	if store == nil {
		return entities.CreateFindingResponse{Error: entities.NewErrorDetail("storage", "no findings store configured")}
	}

	if err := validate.Struct(req); err != nil {
		field := ""
		var fieldErrs validator.ValidationErrors
		if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field = fieldErrs[0].Field()
		}
		return entities.CreateFindingResponse{Error: errors.ToErrorDetail(&errors.ValidationError{Field: field, Err: err})}
	}
	if req.Request.ID == "" {
		return entities.CreateFindingResponse{Error: errors.ToErrorDetail(&errors.ValidationError{
			Field: "Request.ID",
			Err:   stdErrors.New("finding must reference a request the host has seen"),
		})}
	}

	finding, err := store.Create(ctx, entities.FindingWire{
		Title:       req.Title,
		Description: req.Description,
		Reporter:    req.Reporter,
		RequestID:   req.Request.ID,
		Target:      findingTarget(req.Request),
	})
	if err != nil {
		return entities.CreateFindingResponse{Error: errors.ToErrorDetail(err)}
	}

	slog.InfoContext(ctx, "finding created",
		"id", finding.ID, "title", finding.Title, "reporter", finding.Reporter, "request_id", finding.RequestID)
	return entities.CreateFindingResponse{Finding: &finding}
}

// findingTarget renders host:port of the request for listings.
func findingTarget(req entities.RequestWire) string {
	if req.Host == "" {
		return ""
	}
	if req.Port == 0 {
		return req.Host
	}
	return net.JoinHostPort(req.Host, strconv.Itoa(req.Port))
}

func findingsHandler(store ports.FindingStore) HostFunc[entities.CreateFindingRequest, entities.CreateFindingResponse] {
	return func(ctx context.Context, req entities.CreateFindingRequest) entities.CreateFindingResponse {
		return PerformCreateFinding(ctx, store, req)
	}
}
