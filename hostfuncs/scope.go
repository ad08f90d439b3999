package hostfuncs

import (
	"context"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// PerformScopeCheck evaluates the target against the host's scope rules.
// A host without a matcher reports a "scope" error, which scripts treat as
// out of scope.
func PerformScopeCheck(matcher ports.ScopeMatcher, req entities.ScopeCheckRequest) entities.ScopeCheckResponse {
	if matcher == nil {
		return entities.ScopeCheckResponse{Error: entities.NewErrorDetail("scope", "no scope configured")}
	}
	if req.Target.Host == "" {
		return entities.ScopeCheckResponse{Error: entities.NewErrorDetail("validation", "target host is required")}
	}
	return entities.ScopeCheckResponse{InScope: matcher.InScope(req.Target)}
}

func scopeHandler(matcher ports.ScopeMatcher) HostFunc[entities.ScopeCheckRequest, entities.ScopeCheckResponse] {
	return func(_ context.Context, req entities.ScopeCheckRequest) entities.ScopeCheckResponse {
		return PerformScopeCheck(matcher, req)
	}
}
