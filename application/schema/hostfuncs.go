package schema

import (
	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// HostFunctionModels maps every built-in host function to its request payload type.
func HostFunctionModels() map[string]any {
	return map[string]any{
		entities.FuncConsoleLog:     entities.LogMessageWire{},
		entities.FuncRequestsSend:   entities.SendRequest{},
		entities.FuncRequestsScope:  entities.ScopeCheckRequest{},
		entities.FuncFindingsCreate: entities.CreateFindingRequest{},
	}
}

// NewHostFunctionRegistry returns a registry preloaded with the request
// schemas of the built-in host functions.
func NewHostFunctionRegistry(opts ...RegistryOption) (*Registry, error) {
	r := NewRegistry(opts...)
	for name, model := range HostFunctionModels() {
		if err := r.Register(name, model); err != nil {
			return nil, err
		}
	}
	return r, nil
}
