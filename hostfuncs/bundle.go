package hostfuncs

import (
	"context"
	"log/slog"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// HostFuncBundle is a pre-configured set of related host functions.
// Bundles allow registering multiple handlers at once for common use cases.
type HostFuncBundle interface {
	// Handlers returns a map of handler names to ByteHandler functions.
	Handlers() map[string]ByteHandler
}

// staticBundle implements HostFuncBundle with a fixed set of handlers.
type staticBundle struct {
	handlers map[string]ByteHandler
}

func (b *staticBundle) Handlers() map[string]ByteHandler {
	return b.handlers
}

// ConsoleBundle returns a bundle with the console host function:
// console_log.
func ConsoleBundle(logger *slog.Logger, sink ports.LogSink) HostFuncBundle {
	return &staticBundle{
		handlers: map[string]ByteHandler{
			entities.FuncConsoleLog: NewJSONHandler(consoleHandler(logger, sink)),
		},
	}
}

// RequestsBundle returns a bundle with the request host functions:
// requests_send, requests_in_scope. Structured sends share one pooled client
// built from opts. If it cannot be built (a bad proxy URL), each send reports
// the error instead.
func RequestsBundle(scope ports.ScopeMatcher, opts ...SendOption) HostFuncBundle {
	if client, err := NewSendClient(opts...); err == nil {
		opts = append([]SendOption{WithSendClient(client)}, opts...)
	}
	return &staticBundle{
		handlers: map[string]ByteHandler{
			entities.FuncRequestsSend: NewJSONHandler(func(ctx context.Context, req entities.SendRequest) entities.SendResponse {
				return PerformSend(ctx, req, opts...)
			}),
			entities.FuncRequestsScope: NewJSONHandler(scopeHandler(scope)),
		},
	}
}

// FindingsBundle returns a bundle with the findings host function:
// findings_create.
func FindingsBundle(store ports.FindingStore) HostFuncBundle {
	return &staticBundle{
		handlers: map[string]ByteHandler{
			entities.FuncFindingsCreate: NewJSONHandler(findingsHandler(store)),
		},
	}
}

// HostServices carries the collaborators the built-in host functions need.
type HostServices struct {
	Logger      *slog.Logger
	Sink        ports.LogSink
	Scope       ports.ScopeMatcher
	Findings    ports.FindingStore
	SendOptions []SendOption
}

// compositeBundle combines multiple bundles into one.
type compositeBundle struct {
	bundles []HostFuncBundle
}

func (b *compositeBundle) Handlers() map[string]ByteHandler {
	result := make(map[string]ByteHandler)
	for _, bundle := range b.bundles {
		for name, handler := range bundle.Handlers() {
			result[name] = handler
		}
	}
	return result
}

// AllBundles returns a bundle containing all built-in host functions.
// Includes: console_log, requests_send, requests_in_scope, findings_create.
func AllBundles(svc HostServices) HostFuncBundle {
	return &compositeBundle{
		bundles: []HostFuncBundle{
			ConsoleBundle(svc.Logger, svc.Sink),
			RequestsBundle(svc.Scope, svc.SendOptions...),
			FindingsBundle(svc.Findings),
		},
	}
}

// WithBundle registers all handlers from a bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for name, handler := range bundle.Handlers() {
			b.add(name, handler)
		}
	}
}

// WithHandler registers a typed host function with automatic JSON handling.
// The handler will be wrapped with NewJSONHandler for JSON serialization.
//
// Example usage:
//
//	WithHandler("custom_func", func(ctx context.Context, req MyRequest) MyResponse {
//	    return MyResponse{Result: req.Input}
//	})
func WithHandler[Req any, Resp any](name string, fn HostFunc[Req, Resp]) RegistryOption {
	return func(b *registryBuilder) {
		b.add(name, NewJSONHandler(fn))
	}
}
