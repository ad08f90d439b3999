package host

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	wazeroadapter "github.com/proxyscript/script-sdk/go/infrastructure/wazero"
	"github.com/proxyscript/script-sdk/go/internal/abi"
)

const (
	exportRun        = "run"
	exportAllocate   = "allocate"
	exportDeallocate = "deallocate"
)

// ErrInstanceClosed is returned by Run once the instance has been closed,
// either explicitly or because a run outlived its context.
var ErrInstanceClosed = stdErrors.New("script instance closed")

// ScriptInstance is one instantiated script. Runs on an instance are
// serialized; load the script again for parallel runs.
type ScriptInstance struct {
	module   api.Module
	compiled wazero.CompiledModule
	logger   *slog.Logger
	name     string
	mu       sync.Mutex
}

var _ ScriptRunner = (*ScriptInstance)(nil)

// Name returns the script name used in logs.
func (p *ScriptInstance) Name() string {
	return p.name
}

// Run hands in to the script's run export and returns its output. Script
// failures are reported in RunOutput.Error; the returned error covers host
// side failures: ABI violations, traps and context expiry.
func (p *ScriptInstance) Run(ctx context.Context, in entities.RunInput) (entities.RunOutput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.module.IsClosed() {
		return entities.RunOutput{}, ErrInstanceClosed
	}

	ctx, in = prepareRun(ctx, in)
	ctx = wazeroadapter.WithScriptName(ctx, p.name)

	payload, err := json.Marshal(in)
	if err != nil {
		return entities.RunOutput{}, fmt.Errorf("failed to marshal run input: %w", err)
	}

	start := time.Now()
	packed, err := p.callRun(ctx, payload)
	if err != nil {
		if ctx.Err() != nil {
			return entities.RunOutput{}, &errors.TimeoutError{Operation: "run", Target: p.name, Duration: time.Since(start)}
		}
		return entities.RunOutput{}, fmt.Errorf("script %s: %w", p.name, err)
	}

	data, err := p.readAndFree(ctx, packed)
	if err != nil {
		return entities.RunOutput{}, fmt.Errorf("script %s: %w", p.name, err)
	}

	var out entities.RunOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return entities.RunOutput{}, &errors.WireFormatError{Operation: "decode run output", Err: err}
	}

	logRun(ctx, p.logger, p.name, in, out, time.Since(start))
	return out, nil
}

// Close releases the instance. Other instances of the executor are unaffected.
func (p *ScriptInstance) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.module.Close(ctx)
	if cerr := p.compiled.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

// callRun copies input into guest memory and calls run(ptr, len).
func (p *ScriptInstance) callRun(ctx context.Context, input []byte) (uint64, error) {
	allocate := p.module.ExportedFunction(exportAllocate)
	res, err := allocate.Call(ctx, uint64(len(input)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(res) == 0 || res[0] == 0 {
		return 0, fmt.Errorf("guest allocate returned null for %d bytes", len(input))
	}
	ptr := uint32(res[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	defer p.free(ctx, ptr, uint32(len(input)))

	if !p.module.Memory().Write(ptr, input) {
		return 0, fmt.Errorf("failed to write input to guest memory")
	}

	results, err := p.module.ExportedFunction(exportRun).Call(ctx, uint64(ptr), uint64(len(input)))
	if err != nil {
		return 0, fmt.Errorf("run trapped: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("run returned no results")
	}
	return results[0], nil
}

// readAndFree copies the packed output out of guest memory and releases it.
func (p *ScriptInstance) readAndFree(ctx context.Context, packed uint64) ([]byte, error) {
	ptr, length := abi.SplitPacked(packed)
	if ptr == 0 || length == 0 {
		return nil, fmt.Errorf("null response from script")
	}
	defer p.free(ctx, ptr, length)

	data, ok := p.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read response from guest memory")
	}
	return append([]byte(nil), data...), nil
}

func (p *ScriptInstance) free(ctx context.Context, ptr, length uint32) {
	if p.module.IsClosed() {
		return
	}
	if _, err := p.module.ExportedFunction(exportDeallocate).Call(ctx, uint64(ptr), uint64(length)); err != nil {
		p.logger.WarnContext(ctx, "guest deallocate failed", "script", p.name, "error", err)
	}
}
