package host

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/proxyscript/script-sdk/go/hostfuncs"
	wazeroadapter "github.com/proxyscript/script-sdk/go/infrastructure/wazero"
)

const defaultMemoryLimitPages = 256

// Executor runs scripts compiled to wasip1. All scripts loaded by one
// executor share its host function registry.
type Executor struct {
	runtime          wazero.Runtime
	registry         wazeroadapter.Registry
	logger           *slog.Logger
	stdout           io.Writer
	stderr           io.Writer
	adapterOpts      []wazeroadapter.AdapterOption
	memoryLimitPages uint32
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{
		logger:           slog.Default(),
		stdout:           io.Discard,
		stderr:           io.Discard,
		memoryLimitPages: defaultMemoryLimitPages,
	}
	for _, opt := range opts {
		opt(e)
	}

	// Default registry if not provided
	if e.registry == nil {
		reg, err := hostfuncs.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		e.registry = reg
	}

	rtConfig := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithMemoryLimitPages(e.memoryLimitPages)
	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}
	e.runtime = rt

	if err := wazeroadapter.RegisterWithRuntime(ctx, rt, e.registry, e.adapterOpts...); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// Close releases resources held by the executor, including every loaded script.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadScript compiles and instantiates a script. Scripts built as reactors
// (-buildmode=c-shared) have their _initialize export called once here.
func (e *Executor) LoadScript(ctx context.Context, wasmBytes []byte, opts ...ScriptOption) (*ScriptInstance, error) {
	var sc scriptConfig
	for _, opt := range opts {
		opt(&sc)
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}

	if sc.name == "" {
		sc.name = compiled.Name()
	}

	modConfig := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions().
		WithStdout(e.stdout).
		WithStderr(e.stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)

	instCtx := wazeroadapter.WithScriptName(ctx, sc.name)
	mod, err := e.runtime.InstantiateModule(instCtx, compiled, modConfig)
	if err != nil {
		compiled.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate script: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(instCtx); err != nil {
			mod.Close(ctx)
			compiled.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	for _, name := range []string{exportRun, exportAllocate, exportDeallocate} {
		if mod.ExportedFunction(name) == nil {
			mod.Close(ctx)
			compiled.Close(ctx)
			return nil, fmt.Errorf("script does not export %q", name)
		}
	}

	e.logger.DebugContext(ctx, "script loaded", "script", sc.name)
	return &ScriptInstance{module: mod, compiled: compiled, name: sc.name, logger: e.logger}, nil
}
