package sdk

import (
	"log/slog"

	"github.com/proxyscript/script-sdk/go/domain/ports"
	sdklog "github.com/proxyscript/script-sdk/go/log"
)

// SDK is the facade a script receives for one invocation. Every field talks
// to the same host.
type SDK struct {
	Console  *Console
	Requests *Requests
	Findings *Findings
	Utils    Utils
}

type sdkConfig struct {
	logger     *slog.Logger
	consoleLvl slog.Leveler
}

// Option configures New.
type Option func(*sdkConfig)

// WithConsoleLevel sets the lowest console level forwarded to the host.
// The default forwards everything.
func WithConsoleLevel(level slog.Leveler) Option {
	return func(c *sdkConfig) {
		c.consoleLvl = level
	}
}

// WithLogger replaces the console logger. The host invoker is bypassed for
// console output when this is set.
func WithLogger(logger *slog.Logger) Option {
	return func(c *sdkConfig) {
		c.logger = logger
	}
}

// New binds an SDK to invoker.
func New(invoker ports.HostInvoker, opts ...Option) *SDK {
	cfg := sdkConfig{consoleLvl: slog.LevelDebug}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(sdklog.NewHandler(invoker, sdklog.WithLevel(cfg.consoleLvl)))
	}

	return &SDK{
		Console:  NewConsole(logger),
		Requests: NewRequests(invoker),
		Findings: NewFindings(invoker),
	}
}
