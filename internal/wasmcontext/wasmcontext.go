// Package wasmcontext carries a host's context across the script boundary.
// The host flattens its context into entities.ContextWire when it starts a
// run; the script side rebuilds a context.Context from it and keeps it as
// the current context for host function calls made during the run.
package wasmcontext

import (
	stdcontext "context"
	"sync"
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// contextKey is a type alias for context value keys to avoid collisions.
type contextKey string

// RunIDKey is the context key for the run id assigned by the host.
const RunIDKey contextKey = "run_id"

// contextStore holds the context of the run in progress.
// A WASM guest is single-threaded; the lock keeps native tests honest.
var contextStore = struct {
	ctx stdcontext.Context
	sync.RWMutex
}{
	ctx: stdcontext.Background(),
}

// SetCurrentContext sets the context of the run in progress.
func SetCurrentContext(ctx stdcontext.Context) {
	contextStore.Lock()
	defer contextStore.Unlock()
	contextStore.ctx = ctx
}

// GetCurrentContext returns the context of the run in progress, or
// context.Background() outside a run.
func GetCurrentContext() stdcontext.Context {
	contextStore.RLock()
	defer contextStore.RUnlock()
	if contextStore.ctx == nil {
		return stdcontext.Background()
	}
	return contextStore.ctx
}

// ResetContext resets the current context to background.
// Call it (usually via defer) when a run completes.
func ResetContext() {
	SetCurrentContext(stdcontext.Background())
}

// WithRunID returns a copy of ctx carrying the run id.
func WithRunID(ctx stdcontext.Context, id string) stdcontext.Context {
	return stdcontext.WithValue(ctx, RunIDKey, id)
}

// RunIDFrom returns the run id carried by ctx, if any.
func RunIDFrom(ctx stdcontext.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// ContextToWire flattens ctx for a script: deadline, remaining time,
// cancellation and run id.
func ContextToWire(ctx stdcontext.Context) entities.ContextWire {
	wire := entities.ContextWire{RunID: RunIDFrom(ctx)}

	if deadline, ok := ctx.Deadline(); ok {
		wire.Deadline = &deadline
		if timeout := time.Until(deadline); timeout > 0 {
			wire.TimeoutMs = timeout.Milliseconds()
		}
	}

	select {
	case <-ctx.Done():
		wire.Canceled = true
	default:
	}

	return wire
}

// WireToContext rebuilds a context from wire on top of parent (Background
// when nil). The returned CancelFunc must be called when the run ends.
func WireToContext(parent stdcontext.Context, wire entities.ContextWire) (stdcontext.Context, stdcontext.CancelFunc) {
	if parent == nil {
		parent = stdcontext.Background()
	}

	ctx := parent
	var cancel stdcontext.CancelFunc
	switch {
	case wire.Deadline != nil:
		ctx, cancel = stdcontext.WithDeadline(ctx, *wire.Deadline)
	case wire.TimeoutMs > 0:
		ctx, cancel = stdcontext.WithTimeout(ctx, time.Duration(wire.TimeoutMs)*time.Millisecond)
	default:
		ctx, cancel = stdcontext.WithCancel(ctx)
	}

	if wire.RunID != "" {
		ctx = WithRunID(ctx, wire.RunID)
	}

	if wire.Canceled {
		cancel()
	}

	return ctx, cancel
}
