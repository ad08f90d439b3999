package hostfuncs

import (
	"context"
	stdErrors "errors"
	"fmt"
	"maps"
	"slices"

	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

var _ ports.HostInvoker = (*HandlerRegistry)(nil)

// HandlerRegistry maps host function names (console_log, requests_send,
// requests_in_scope, findings_create and any custom ones) to handlers.
// It is fixed once NewRegistry returns, so lookups take no lock.
type HandlerRegistry struct {
	funcs map[string]ByteHandler
	names []string
}

// registryBuilder collects handlers and middleware while options run.
type registryBuilder struct {
	funcs      map[string]ByteHandler
	middleware []Middleware
	errs       []error
}

// NewRegistry builds a registry from opts. Every registration problem
// (an empty name, a name used twice) is reported in the returned error.
//
//	reg, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware(), LoggingMiddleware(logger)),
//	    WithBundle(AllBundles(services)),
//	    WithHandler("custom", customHandler),
//	)
func NewRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	b := &registryBuilder{funcs: make(map[string]ByteHandler)}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errs) > 0 {
		return nil, stdErrors.Join(b.errs...)
	}

	funcs := make(map[string]ByteHandler, len(b.funcs))
	for name, h := range b.funcs {
		funcs[name] = wrap(h, b.middleware)
	}
	return &HandlerRegistry{
		funcs: funcs,
		names: slices.Sorted(maps.Keys(funcs)),
	}, nil
}

// wrap applies mw so that mw[0] is the outermost layer.
func wrap(h ByteHandler, mw []Middleware) ByteHandler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Invoke runs the host function called name. Unknown names answer with a
// NOT_FOUND fault payload rather than an error, so the guest sees the same
// shape it gets for any other failed call.
func (r *HandlerRegistry) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	h, ok := r.funcs[name]
	if !ok {
		return NewNotFoundError(name).ToJSON(), nil
	}
	return h(HostContextFrom(ctx, name), payload)
}

// Has reports whether name is registered.
func (r *HandlerRegistry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *HandlerRegistry) Names() []string {
	return slices.Clone(r.names)
}

func (b *registryBuilder) add(name string, h ByteHandler) {
	_, dup := b.funcs[name]
	switch {
	case name == "":
		b.errs = append(b.errs, &errors.ValidationError{Field: "name", Err: stdErrors.New("host function name is empty")})
	case dup:
		b.errs = append(b.errs, &errors.ValidationError{Field: "name", Err: fmt.Errorf("host function %q registered twice", name)})
	default:
		b.funcs[name] = h
	}
}

// WithByteHandler registers a raw handler. WithHandler is the typed variant.
func WithByteHandler(name string, handler ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		b.add(name, handler)
	}
}

// WithMiddleware appends middleware. The first one added runs first.
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
