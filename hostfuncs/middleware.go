package hostfuncs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// DefaultMaxRequestSize limits the size of incoming payloads (1MB).
// This prevents a script from triggering OOM by claiming huge request sizes.
const DefaultMaxRequestSize = 1 * 1024 * 1024

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	tracing := func(next ByteHandler) ByteHandler {
//	    return func(ctx context.Context, payload []byte) ([]byte, error) {
//	        span := start(FunctionNameFrom(ctx))
//	        defer span.End()
//	        return next(ctx, payload)
//	    }
//	}
type Middleware func(next ByteHandler) ByteHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to structured ErrorResponse JSON instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					slog.ErrorContext(ctx, "host function panicked",
						"function", FunctionNameFrom(ctx),
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()))
					resp = NewPanicError(r).ToJSON()
					err = nil // Return JSON error, not Go error
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware returns a middleware that logs every host function call
// with its name, call id, payload size and duration.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			attrs := []any{"function", FunctionNameFrom(ctx), "request_bytes", len(payload)}
			if hc, ok := ctx.(HostContext); ok {
				attrs = append(attrs, "call_id", hc.CallID())
			}

			start := time.Now()
			resp, err := next(ctx, payload)
			attrs = append(attrs, "duration", time.Since(start))

			if err != nil {
				logger.ErrorContext(ctx, "host function failed", append(attrs, "error", err)...)
				return resp, err
			}
			logger.DebugContext(ctx, "host function completed", append(attrs, "response_bytes", len(resp))...)
			return resp, nil
		}
	}
}

// MaxPayloadMiddleware rejects payloads larger than limit bytes with a
// VALIDATION_ERROR fault. A non-positive limit uses DefaultMaxRequestSize.
func MaxPayloadMiddleware(limit int) Middleware {
	if limit <= 0 {
		limit = DefaultMaxRequestSize
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			if len(payload) > limit {
				return NewValidationError(fmt.Sprintf("payload of %d bytes exceeds limit of %d", len(payload), limit)).ToJSON(), nil
			}
			return next(ctx, payload)
		}
	}
}

// PayloadValidator checks a payload against the schema registered for a
// host function.
type PayloadValidator interface {
	ValidatePayload(function string, payload []byte) error
}

// PayloadValidationMiddleware rejects payloads that fail validation with a
// VALIDATION_ERROR fault before they reach the handler.
func PayloadValidationMiddleware(v PayloadValidator) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			if err := v.ValidatePayload(FunctionNameFrom(ctx), payload); err != nil {
				return NewValidationError(err.Error()).ToJSON(), nil
			}
			return next(ctx, payload)
		}
	}
}
