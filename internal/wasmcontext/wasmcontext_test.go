package wasmcontext

import (
	"context"
	"testing"
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetCurrentContext(t *testing.T) {
	ResetContext()
	assert.Equal(t, context.Background(), GetCurrentContext(), "should default to background")

	expectedCtx := WithRunID(context.Background(), "run-1")
	SetCurrentContext(expectedCtx)

	actualCtx := GetCurrentContext()
	assert.Equal(t, expectedCtx, actualCtx)
	assert.Equal(t, "run-1", RunIDFrom(actualCtx))

	ResetContext()
	assert.Equal(t, context.Background(), GetCurrentContext())
}

func TestContextToWire(t *testing.T) {
	t.Run("background", func(t *testing.T) {
		wire := ContextToWire(context.Background())
		assert.Equal(t, entities.ContextWire{}, wire)
	})

	t.Run("deadline and run id", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(WithRunID(context.Background(), "run-7"), time.Hour)
		defer cancel()

		wire := ContextToWire(ctx)
		require.NotNil(t, wire.Deadline)
		assert.Equal(t, "run-7", wire.RunID)
		assert.Greater(t, wire.TimeoutMs, int64(59*60*1000))
		assert.False(t, wire.Canceled)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.True(t, ContextToWire(ctx).Canceled)
	})
}

func TestWireToContext(t *testing.T) {
	t.Run("run id", func(t *testing.T) {
		ctx, cancel := WireToContext(context.Background(), entities.ContextWire{RunID: "run-456"})
		defer cancel()

		assert.Equal(t, "run-456", RunIDFrom(ctx))
		assert.NoError(t, ctx.Err())
	})

	t.Run("deadline", func(t *testing.T) {
		deadline := time.Now().Add(time.Hour)
		ctx, cancel := WireToContext(context.Background(), entities.ContextWire{Deadline: &deadline})
		defer cancel()

		d, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, deadline, d, time.Millisecond)
	})

	t.Run("timeout", func(t *testing.T) {
		ctx, cancel := WireToContext(context.Background(), entities.ContextWire{TimeoutMs: 1000})
		defer cancel()

		d, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), d, 100*time.Millisecond)
	})

	t.Run("pre-canceled", func(t *testing.T) {
		ctx, cancel := WireToContext(context.Background(), entities.ContextWire{Canceled: true})
		defer cancel()

		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})

	t.Run("nil parent", func(t *testing.T) {
		//nolint:staticcheck // nil parent is accepted
		ctx, cancel := WireToContext(nil, entities.ContextWire{})
		defer cancel()
		assert.NoError(t, ctx.Err())
	})
}

func TestWireRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(WithRunID(context.Background(), "run-9"), time.Minute)
	defer cancel()

	rebuilt, rebuiltCancel := WireToContext(nil, ContextToWire(ctx))
	defer rebuiltCancel()

	want, _ := ctx.Deadline()
	got, ok := rebuilt.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, want, got, time.Millisecond)
	assert.Equal(t, "run-9", RunIDFrom(rebuilt))
}
