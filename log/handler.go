// Package log provides structured logging (slog) routed to the script host.
package log

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// HostHandler implements slog.Handler by forwarding records to the host's
// console_log function.
type HostHandler struct {
	invoker ports.HostInvoker
	attrs   []entities.LogAttrWire
	groups  []string
	opts    handlerConfig
}

var _ slog.Handler = (*HostHandler)(nil)

// HandlerOption configures the HostHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level are dropped before reaching the host.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a HostHandler that delivers records through invoker.
func NewHandler(invoker ports.HostInvoker, opts ...HandlerOption) *HostHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HostHandler{invoker: invoker, opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *HostHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle serializes the record and sends it to the host. Delivery is best
// effort: failures are reported on stderr and never returned to the caller.
func (h *HostHandler) Handle(ctx context.Context, record slog.Record) error {
	msg := entities.LogMessageWire{
		Timestamp: record.Time,
		Attrs:     slices.Clone(h.attrs),
		Level:     LevelString(record.Level),
		Message:   record.Message,
	}

	prefix := strings.Join(h.groups, ".")
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = appendAttr(msg.Attrs, prefix, attr)
		return true
	})

	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		msg.Attrs = append(msg.Attrs, entities.LogAttrWire{
			Key:   slog.SourceKey,
			Type:  "string",
			Value: frame.File + ":" + strconv.Itoa(frame.Line),
		})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		fallback("failed to marshal log message", err, record.Message)
		return nil
	}

	if h.invoker == nil {
		fallback("no host attached", nil, record.Message)
		return nil
	}
	if _, err := h.invoker.Invoke(ctx, entities.FuncConsoleLog, payload); err != nil {
		fallback("failed to deliver log message", err, record.Message)
	}
	return nil
}

// WithAttrs returns a new HostHandler that includes the given attributes.
func (h *HostHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newHandler := h.clone()
	prefix := strings.Join(h.groups, ".")
	for _, attr := range attrs {
		newHandler.attrs = appendAttr(newHandler.attrs, prefix, attr)
	}
	return newHandler
}

// WithGroup returns a new HostHandler that qualifies later attribute keys
// with name.
func (h *HostHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newHandler := h.clone()
	newHandler.groups = append(newHandler.groups, name)
	return newHandler
}

func (h *HostHandler) clone() *HostHandler {
	newHandler := *h
	newHandler.attrs = slices.Clone(h.attrs)
	newHandler.groups = slices.Clone(h.groups)
	return &newHandler
}

// LevelString renders a level the way the console names them.
func LevelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

// ParseLevel is the inverse of LevelString. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func fallback(reason string, err error, message string) {
	if err != nil {
		_, _ = os.Stderr.WriteString("sdk: " + reason + ": " + err.Error() + ", original: " + message + "\n")
		return
	}
	_, _ = os.Stderr.WriteString("sdk: " + reason + ", original: " + message + "\n")
}
