package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Console writes messages to the host console. Delivery is best effort.
type Console struct {
	logger *slog.Logger
}

// NewConsole creates a Console on top of logger.
func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) Debug(v any) { c.write(slog.LevelDebug, v) }

// Log writes at info level.
func (c *Console) Log(v any) { c.write(slog.LevelInfo, v) }

func (c *Console) Warn(v any) { c.write(slog.LevelWarn, v) }

func (c *Console) Error(v any) { c.write(slog.LevelError, v) }

// Logger exposes the underlying structured logger.
func (c *Console) Logger() *slog.Logger { return c.logger }

func (c *Console) write(level slog.Level, v any) {
	if c == nil || c.logger == nil {
		return
	}
	c.logger.Log(context.Background(), level, render(v))
}

// render turns a console argument into text: strings as-is, errors and
// Stringers by their methods, everything else as JSON.
func render(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case Bytes:
		return AsString(val)
	case []byte:
		return AsString(val)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}
