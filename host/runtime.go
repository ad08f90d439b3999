package host

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	sdk "github.com/proxyscript/script-sdk/go"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	"github.com/proxyscript/script-sdk/go/internal/wasmcontext"
	"github.com/proxyscript/script-sdk/go/script"
)

// ScriptRunner runs one observation through a script.
type ScriptRunner interface {
	Run(ctx context.Context, in entities.RunInput) (entities.RunOutput, error)
}

// Runtime runs Go scripts in process against a host invoker, usually a
// *hostfuncs.HandlerRegistry. It is the native counterpart of ScriptInstance.
type Runtime struct {
	invoker ports.HostInvoker
	logger  *slog.Logger
	scripts script.Scripts
	name    string
	sdkOpts []sdk.Option
	timeout time.Duration
}

var _ ScriptRunner = (*Runtime)(nil)

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeLogger sets the logger used for run records.
func WithRuntimeLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRunTimeout bounds every run. Zero leaves runs bounded only by the caller's context.
func WithRunTimeout(d time.Duration) RuntimeOption {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// WithRuntimeName names the scripts in logs.
func WithRuntimeName(name string) RuntimeOption {
	return func(r *Runtime) {
		r.name = name
	}
}

// WithSDKOptions passes options to the SDK handed to scripts.
func WithSDKOptions(opts ...sdk.Option) RuntimeOption {
	return func(r *Runtime) {
		r.sdkOpts = append(r.sdkOpts, opts...)
	}
}

// NewRuntime creates a Runtime for scripts backed by invoker.
func NewRuntime(invoker ports.HostInvoker, scripts script.Scripts, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		invoker: invoker,
		scripts: scripts,
		logger:  slog.Default(),
		name:    "native",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run dispatches in to the matching script entry point. Script failures,
// panics included, are reported in RunOutput.Error and never returned.
func (r *Runtime) Run(ctx context.Context, in entities.RunInput) (entities.RunOutput, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ctx, in = prepareRun(ctx, in)

	start := time.Now()
	out := r.scripts.Dispatch(ctx, r.invoker, in, r.sdkOpts...)
	logRun(ctx, r.logger, r.name, in, out, time.Since(start))
	return out, nil
}

// prepareRun assigns a run id when the caller has none and captures ctx in
// the input's context section.
func prepareRun(ctx context.Context, in entities.RunInput) (context.Context, entities.RunInput) {
	id := wasmcontext.RunIDFrom(ctx)
	if id == "" {
		id = in.Context.RunID
	}
	if id == "" {
		id = uuid.NewString()
	}
	ctx = wasmcontext.WithRunID(ctx, id)
	in.Context = wasmcontext.ContextToWire(ctx)
	return ctx, in
}

func logRun(ctx context.Context, logger *slog.Logger, name string, in entities.RunInput, out entities.RunOutput, d time.Duration) {
	attrs := []any{
		"script", name,
		"kind", in.Kind,
		"run_id", in.Context.RunID,
		"duration", d,
	}
	if out.Error != nil {
		logger.WarnContext(ctx, "script run failed", append(attrs, "error", out.Error.Message, "error_type", out.Error.Type)...)
		return
	}
	logger.DebugContext(ctx, "script run completed", append(attrs, "has_data", out.HasData)...)
}

// PassiveInput builds the RunInput of a passive run.
func PassiveInput(req *entities.RequestWire, resp *entities.ResponseWire) entities.RunInput {
	return entities.RunInput{Kind: entities.ScriptKindPassive, Request: req, Response: resp}
}

// ConvertInput builds the RunInput of a convert run.
func ConvertInput(data []byte) entities.RunInput {
	return entities.RunInput{Kind: entities.ScriptKindConvert, Data: data}
}
