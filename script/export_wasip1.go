//go:build wasip1

package script

import (
	"encoding/json"
	"log/slog"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/infrastructure/wasm"
	"github.com/proxyscript/script-sdk/go/internal/abi"
	"github.com/proxyscript/script-sdk/go/internal/wasmcontext"
	sdklog "github.com/proxyscript/script-sdk/go/log"
)

var invoker = wasm.NewInvoker()

// Route slog.Default to the host console so library code logging through
// slog shows up next to the script's own console output.
func init() {
	slog.SetDefault(slog.New(sdklog.NewHandler(invoker)))
}

// run is called by the host once per observation with a RunInput document
// and returns a packed RunOutput document.
//
//go:wasmexport run
func run(inputPtr uint32, inputLen uint32) (packed uint64) {
	defer func() {
		if r := recover(); r != nil {
			abi.FreeAllTracked()
			slog.Error("script runtime panic recovered", "panic", r)
			packed = packOutput(entities.RunOutput{Error: entities.NewErrorDetail("panic", "script runtime panic")})
		}
	}()

	var in entities.RunInput
	if err := json.Unmarshal(abi.BytesFromPtr(abi.PackPtrLen(inputPtr, inputLen)), &in); err != nil {
		return packOutput(entities.RunOutput{Error: entities.NewErrorDetail("validation", "invalid run input: "+err.Error())})
	}
	return packOutput(Dispatch(wasmcontext.GetCurrentContext(), invoker, in))
}

func packOutput(out entities.RunOutput) uint64 {
	data, err := json.Marshal(out)
	if err != nil {
		data, _ = json.Marshal(entities.RunOutput{Error: entities.NewErrorDetail("internal", "failed to marshal run output")})
	}
	return abi.PtrFromBytes(data)
}
