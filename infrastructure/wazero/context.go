package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// contextKey is a private type for context keys.
type contextKey struct {
	name string
}

var scriptNameKey = &contextKey{name: "script_name"}

// WithScriptName adds the script name to the context so host function logs
// can say which script made a call.
func WithScriptName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, scriptNameKey, name)
}

// ScriptNameFromContext retrieves the script name from the context.
func ScriptNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(scriptNameKey).(string)
	return name, ok
}

// GetScriptName extracts the script name from context, falling back to the
// module name.
func GetScriptName(ctx context.Context, mod api.Module) string {
	if name, ok := ScriptNameFromContext(ctx); ok {
		return name
	}
	if mod == nil {
		return ""
	}
	return mod.Name()
}
