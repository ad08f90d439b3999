package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/proxyscript/script-sdk/go/domain/ports"
)

type registryConfig struct {
	strictMode bool // fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true,
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicates). Disable only for testing or hot-reloading.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry implements ports.SchemaRegistry.
type Registry struct {
	config  registryConfig
	schemas sync.Map // map[string][]byte
	mu      sync.Mutex
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{config: cfg}
}

var _ ports.SchemaRegistry = (*Registry)(nil)

// Register generates and stores the schema of model under name.
func (r *Registry) Register(name string, model any) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.strictMode {
		if _, exists := r.schemas.Load(name); exists {
			return fmt.Errorf("schema %q already registered", name)
		}
	}

	data, err := GenerateSchema(model)
	if err != nil {
		return fmt.Errorf("schema %q: %w", name, err)
	}
	r.schemas.Store(name, data)
	return nil
}

// GetSchema returns the schema registered under name.
func (r *Registry) GetSchema(name string) ([]byte, bool) {
	v, ok := r.schemas.Load(name)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// List returns all registered names in sorted order.
func (r *Registry) List() []string {
	var names []string
	r.schemas.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
