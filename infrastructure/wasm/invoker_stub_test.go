//go:build !wasip1

package wasm

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoker_NativeBuildNotSupported(t *testing.T) {
	resp, err := NewInvoker().Invoke(context.Background(), entities.FuncConsoleLog, []byte(`{}`))
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, stdErrors.Is(err, errors.ErrNotSupported))
	assert.Contains(t, err.Error(), entities.FuncConsoleLog)
}
