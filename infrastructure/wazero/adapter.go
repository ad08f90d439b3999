package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/proxyscript/script-sdk/go/domain/ports"
	"github.com/proxyscript/script-sdk/go/hostfuncs"
	"github.com/proxyscript/script-sdk/go/internal/abi"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultModuleName is the import module scripts expect host functions in.
const DefaultModuleName = "script_host"

// Registry is the set of host functions to export.
// *hostfuncs.HandlerRegistry satisfies it.
type Registry interface {
	ports.HostInvoker
	Names() []string
}

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// ModuleName is the host module name (default: "script_host").
	ModuleName string

	// MaxRequestSize limits the size of incoming requests from guest memory.
	// Default is 1MB.
	MaxRequestSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "script_host").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		if name != "" {
			c.ModuleName = name
		}
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		if size > 0 {
			c.MaxRequestSize = size
		}
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     DefaultModuleName,
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
	}
}

// RegisterWithRuntime instantiates the host module and exports every
// function of registry from it.
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry Registry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)
	for _, name := range registry.Names() {
		funcName := name
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = handleRegistryCall(ctx, mod, stack[0], registry, funcName, cfg.MaxRequestSize)
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(funcName)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("failed to instantiate host module %q: %w", cfg.ModuleName, err)
	}
	return nil
}

// handleRegistryCall serves one call from a guest and returns the packed reply.
func handleRegistryCall(ctx context.Context, mod api.Module, packed uint64, registry Registry, name string, maxRequestSize uint32) uint64 {
	ptr, length := abi.SplitPacked(packed)
	script := GetScriptName(ctx, mod)

	if length > maxRequestSize {
		errMsg := fmt.Sprintf("request size %d exceeds maximum %d bytes", length, maxRequestSize)
		slog.ErrorContext(ctx, "wazero: "+errMsg, "function", name, "script", script)
		return writeErrorResponse(ctx, mod, hostfuncs.NewValidationError(errMsg))
	}

	var request []byte
	if length > 0 {
		data, ok := mod.Memory().Read(ptr, length)
		if !ok {
			errMsg := "failed to read request from guest memory"
			slog.ErrorContext(ctx, "wazero: "+errMsg, "function", name, "script", script)
			return writeErrorResponse(ctx, mod, hostfuncs.NewInternalError(errMsg))
		}
		// The view aliases guest memory, which the handler must not observe
		// changing under it.
		request = append([]byte(nil), data...)
	}

	response, err := registry.Invoke(ctx, name, request)
	if err != nil {
		slog.ErrorContext(ctx, "wazero: handler invocation failed", "function", name, "script", script, "error", err)
		return writeErrorResponse(ctx, mod, hostfuncs.NewInternalError(err.Error()))
	}

	return writeResponse(ctx, mod, response)
}

// writeResponse copies data into memory from the guest's allocate export.
// Returns 0 when the guest cannot take the reply.
func writeResponse(ctx context.Context, mod api.Module, data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}

	allocateFn := mod.ExportedFunction("allocate")
	if allocateFn == nil {
		slog.ErrorContext(ctx, "wazero: guest module missing 'allocate' export")
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 {
		slog.ErrorContext(ctx, "wazero: failed to call guest allocate", "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if ptr == 0 {
		slog.ErrorContext(ctx, "wazero: guest allocate returned null", "size", len(data))
		return 0
	}

	if !mod.Memory().Write(ptr, data) {
		slog.ErrorContext(ctx, "wazero: failed to write response to guest memory")
		return 0
	}

	return abi.PackPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: replies are bounded by guest memory
}

func writeErrorResponse(ctx context.Context, mod api.Module, errResp hostfuncs.ErrorResponse) uint64 {
	return writeResponse(ctx, mod, errResp.ToJSON())
}
