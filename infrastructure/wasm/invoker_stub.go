//go:build !wasip1

package wasm

import (
	"context"
	"fmt"

	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

var _ ports.HostInvoker = (*Invoker)(nil)

// HostModule is the import module every host function lives in.
const HostModule = "script_host"

// Invoker stub for native builds.
type Invoker struct{}

// NewInvoker returns the stub invoker.
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Invoke always fails outside wasip1.
func (i *Invoker) Invoke(_ context.Context, name string, _ []byte) ([]byte, error) {
	return nil, fmt.Errorf("host function %s: %w", name, errors.ErrNotSupported)
}
