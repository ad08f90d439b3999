package host

import (
	"io"
	"log/slog"

	wazeroadapter "github.com/proxyscript/script-sdk/go/infrastructure/wazero"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithHostFunctions configures the executor with a host function registry.
// *hostfuncs.HandlerRegistry satisfies the interface.
func WithHostFunctions(registry wazeroadapter.Registry) Option {
	return func(e *Executor) {
		e.registry = registry
	}
}

// WithLogger sets the logger used for script lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMemoryLimitPages caps guest memory in 64KiB pages (default: 256, 16MiB).
func WithMemoryLimitPages(pages uint32) Option {
	return func(e *Executor) {
		if pages > 0 {
			e.memoryLimitPages = pages
		}
	}
}

// WithScriptOutput sends the scripts' stdout and stderr to w.
// By default guest output is discarded; scripts log through the console.
func WithScriptOutput(w io.Writer) Option {
	return func(e *Executor) {
		e.stdout = w
		e.stderr = w
	}
}

// WithAdapterOptions passes options to the host module adapter.
func WithAdapterOptions(opts ...wazeroadapter.AdapterOption) Option {
	return func(e *Executor) {
		e.adapterOpts = append(e.adapterOpts, opts...)
	}
}

// ScriptOption configures one loaded script.
type ScriptOption func(*scriptConfig)

type scriptConfig struct {
	name string
}

// WithScriptName names the script in logs and host function call records.
func WithScriptName(name string) ScriptOption {
	return func(c *scriptConfig) {
		c.name = name
	}
}
