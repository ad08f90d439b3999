package ports

import "context"

// HostInvoker delivers a host function call and returns the raw JSON response.
// Implementations exist for in-process registries, WASM imports and HTTP.
type HostInvoker interface {
	// Invoke calls the named host function with a JSON payload.
	// A non-nil error means the call could not be delivered; failures of the
	// operation itself are reported inside the response document.
	Invoke(ctx context.Context, name string, payload []byte) ([]byte, error)
}

// HostInvokerFunc adapts a function to HostInvoker.
type HostInvokerFunc func(ctx context.Context, name string, payload []byte) ([]byte, error)

// Invoke calls f.
func (f HostInvokerFunc) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	return f(ctx, name, payload)
}
