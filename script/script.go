package script

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	sdk "github.com/proxyscript/script-sdk/go"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	"github.com/proxyscript/script-sdk/go/internal/wasmcontext"
)

// Scripts holds the entry points of one script. Either may be nil.
type Scripts struct {
	Passive sdk.PassiveScript
	Convert sdk.ConvertScript
}

var registered = struct {
	scripts Scripts
	sync.RWMutex
}{}

// RegisterPassive installs fn as the script's passive entry point.
func RegisterPassive(fn sdk.PassiveScript) {
	registered.Lock()
	defer registered.Unlock()
	registered.scripts.Passive = fn
}

// RegisterConvert installs fn as the script's convert entry point.
func RegisterConvert(fn sdk.ConvertScript) {
	registered.Lock()
	defer registered.Unlock()
	registered.scripts.Convert = fn
}

// Registered returns the entry points installed so far.
func Registered() Scripts {
	registered.RLock()
	defer registered.RUnlock()
	return registered.scripts
}

// Dispatch runs the registered entry point selected by in.Kind.
func Dispatch(ctx context.Context, invoker ports.HostInvoker, in entities.RunInput, opts ...sdk.Option) entities.RunOutput {
	return Registered().Dispatch(ctx, invoker, in, opts...)
}

// Dispatch runs the entry point selected by in.Kind with an SDK bound to
// invoker. Script errors and panics are reported in the output, never
// returned or propagated.
func (s Scripts) Dispatch(ctx context.Context, invoker ports.HostInvoker, in entities.RunInput, opts ...sdk.Option) (out entities.RunOutput) {
	ctx, cancel := wasmcontext.WireToContext(ctx, in.Context)
	defer cancel()

	wasmcontext.SetCurrentContext(ctx)
	defer wasmcontext.ResetContext()

	defer func() {
		if r := recover(); r != nil {
			detail := &entities.ErrorDetail{
				Message: fmt.Sprintf("script panic: %v", r),
				Type:    "panic",
				Stack:   debug.Stack(),
			}
			slog.ErrorContext(ctx, "script panic recovered", "error", detail.Message, "kind", in.Kind)
			out = entities.RunOutput{Error: detail}
		}
	}()

	if err := ctx.Err(); err != nil {
		return entities.RunOutput{Error: &entities.ErrorDetail{
			Message:   err.Error(),
			Type:      "timeout",
			IsTimeout: err == context.DeadlineExceeded,
		}}
	}

	api := sdk.New(invoker, opts...)

	switch in.Kind {
	case entities.ScriptKindPassive:
		if s.Passive == nil {
			return notRegistered(in.Kind)
		}
		if err := s.Passive(ctx, httpInput(in), api); err != nil {
			return entities.RunOutput{Error: errors.ToErrorDetail(err)}
		}
		return entities.RunOutput{}

	case entities.ScriptKindConvert:
		if s.Convert == nil {
			return notRegistered(in.Kind)
		}
		data, err := s.Convert(ctx, sdk.BytesInput{Data: sdk.Bytes(in.Data)}, api)
		if err != nil {
			return entities.RunOutput{Error: errors.ToErrorDetail(err)}
		}
		if data == nil {
			return entities.RunOutput{}
		}
		return entities.RunOutput{Data: data, HasData: true}

	default:
		return entities.RunOutput{Error: entities.NewErrorDetail("validation", fmt.Sprintf("unknown script kind %q", in.Kind))}
	}
}

func httpInput(in entities.RunInput) sdk.HTTPInput {
	var input sdk.HTTPInput
	if in.Request != nil {
		input.Request = sdk.RequestFromWire(*in.Request)
	}
	if in.Response != nil {
		input.Response = sdk.ResponseFromWire(*in.Response)
	}
	return input
}

func notRegistered(kind string) entities.RunOutput {
	return entities.RunOutput{Error: entities.NewErrorDetail("config", fmt.Sprintf("no %s entry point registered", kind))}
}
