//go:build wasip1

package wasm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	"github.com/proxyscript/script-sdk/go/internal/abi"
)

// Compile-time interface compliance check
var _ ports.HostInvoker = (*Invoker)(nil)

// Invoker calls host functions through the script_host imports.
type Invoker struct{}

// NewInvoker returns the guest invoker.
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Invoke calls the imported host function name. The import blocks until the
// host replies, so ctx is only checked before the call.
func (i *Invoker) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fn, ok := imports[name]
	if !ok {
		return notFound(name), nil
	}

	reqPacked := abi.PtrFromBytes(payload)
	respPacked := fn(reqPacked)
	abi.DeallocatePacked(reqPacked)

	if respPacked == 0 {
		return nil, fmt.Errorf("host function %s returned no data", name)
	}
	resp := abi.BytesFromPtr(respPacked)
	abi.DeallocatePacked(respPacked)
	return resp, nil
}

// notFound mirrors the host's reply for unknown functions.
func notFound(name string) []byte {
	data, _ := json.Marshal(entities.HostFault{
		Error:   "NOT_FOUND",
		Message: "unknown host function: " + name,
		Code:    404,
	})
	return data
}
