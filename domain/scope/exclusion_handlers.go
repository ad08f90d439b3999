package scope

import (
	"log/slog"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

var (
	_ ports.ExclusionHandler = (*LogExclusionHandler)(nil)
	_ ports.ExclusionHandler = (*NopExclusionHandler)(nil)
)

// LogExclusionHandler logs out-of-scope targets at debug level.
type LogExclusionHandler struct {
	Logger *slog.Logger
}

func (h *LogExclusionHandler) OnExcluded(target entities.ScopeTarget, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("scope: target excluded",
		"host", target.Host, "port", target.Port, "path", target.Path, "reason", reason)
}

// NopExclusionHandler does nothing.
type NopExclusionHandler struct{}

func (h *NopExclusionHandler) OnExcluded(entities.ScopeTarget, string) {}
