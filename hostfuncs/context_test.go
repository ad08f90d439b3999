package hostfuncs

import (
	"context"
	"testing"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHostContext(t *testing.T) {
	hc := NewHostContext(context.Background(), entities.FuncRequestsSend)

	require.NotNil(t, hc)
	assert.Equal(t, entities.FuncRequestsSend, hc.FunctionName())
	assert.NotEmpty(t, hc.CallID())
}

func TestHostContext_CallIDUnique(t *testing.T) {
	a := NewHostContext(context.Background(), "f")
	b := NewHostContext(context.Background(), "f")
	assert.NotEqual(t, a.CallID(), b.CallID())
}

func TestHostContext_SetGetValue(t *testing.T) {
	hc := NewHostContext(context.Background(), "test_func")

	_, ok := hc.GetValue("key1")
	assert.False(t, ok)

	hc.SetValue("key1", "value1")
	val, ok := hc.GetValue("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", val)

	hc.SetValue("key2", 42)
	val2, ok := hc.GetValue("key2")
	assert.True(t, ok)
	assert.Equal(t, 42, val2)

	val, ok = hc.GetValue("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", val)
}

func TestHostContext_ImplementsContext(t *testing.T) {
	hc := NewHostContext(context.Background(), entities.FuncConsoleLog)

	var ctx context.Context = hc
	assert.NotNil(t, ctx)

	assert.Nil(t, hc.Done())
	assert.Nil(t, hc.Err())
	assert.Nil(t, hc.Value("nonexistent"))
}

func TestHostContext_PropagatesCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	hc := NewHostContext(parent, entities.FuncRequestsSend)

	cancel()
	<-hc.Done()
	assert.ErrorIs(t, hc.Err(), context.Canceled)
}

func TestHostContextFrom(t *testing.T) {
	t.Run("wraps plain context", func(t *testing.T) {
		hc := HostContextFrom(context.Background(), entities.FuncFindingsCreate)
		assert.Equal(t, entities.FuncFindingsCreate, hc.FunctionName())
	})

	t.Run("returns existing HostContext for the same function", func(t *testing.T) {
		original := NewHostContext(context.Background(), "original")
		original.SetValue("marker", true)

		returned := HostContextFrom(original, "original")

		assert.Equal(t, original.CallID(), returned.CallID())
		val, ok := returned.GetValue("marker")
		assert.True(t, ok)
		assert.Equal(t, true, val)
	})

	t.Run("nested call to another function gets its own context", func(t *testing.T) {
		outer := NewHostContext(context.Background(), entities.FuncRequestsSend)
		outer.SetValue("marker", true)

		inner := HostContextFrom(outer, entities.FuncConsoleLog)

		assert.Equal(t, entities.FuncConsoleLog, inner.FunctionName())
		assert.NotEqual(t, outer.CallID(), inner.CallID())
		_, ok := inner.GetValue("marker")
		assert.False(t, ok)
	})
}

func TestFunctionNameFrom(t *testing.T) {
	assert.Equal(t, "unknown", FunctionNameFrom(context.Background()))
	assert.Equal(t, "x", FunctionNameFrom(NewHostContext(context.Background(), "x")))
}
