package host

import (
	"fmt"
	"os"

	apptemplate "github.com/proxyscript/script-sdk/go/application/template"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	"github.com/proxyscript/script-sdk/go/domain/scope"
	"github.com/proxyscript/script-sdk/go/infrastructure/parser"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	templateEngine  ports.TemplateEngine
	parser          ports.ScopeParser
	strictTemplates bool // Fail on missing template keys
	skipValidation  bool
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		parser:          parser.NewYamlScopeParser(),
		strictTemplates: true,
	}
}

// Loader orchestrates the scope file pipeline: render, parse, validate.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom scope parser.
func WithParser(p ports.ScopeParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithTemplateEngine sets a template engine.
func WithTemplateEngine(t ports.TemplateEngine) LoaderOption {
	return func(c *loaderConfig) {
		c.templateEngine = t
	}
}

// WithStrictTemplates enables/disables strict template mode.
// When enabled (default), rendering fails if a referenced key is missing.
func WithStrictTemplates(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.strictTemplates = enabled
	}
}

// WithoutValidation loads rules as written. Invalid criteria are then
// ignored by the scope engine instead of rejected.
func WithoutValidation() LoaderOption {
	return func(c *loaderConfig) {
		c.skipValidation = true
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.templateEngine == nil {
		cfg.templateEngine = apptemplate.NewGoTemplateEngine(
			apptemplate.WithStrict(cfg.strictTemplates),
		)
	}

	return &Loader{config: cfg}
}

// LoadScope renders raw with vars, parses it and validates every rule.
func (l *Loader) LoadScope(raw []byte, vars map[string]any) (*entities.ScopeSet, error) {
	data, err := l.config.templateEngine.Render(raw, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to render scope: %w", err)
	}

	set, err := l.config.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scope: %w", err)
	}

	if !l.config.skipValidation {
		if err := scope.Validate(set); err != nil {
			return nil, fmt.Errorf("scope validation failed: %w", err)
		}
	}

	return set, nil
}

// LoadScopeFile reads path and loads it with LoadScope.
func (l *Loader) LoadScopeFile(path string, vars map[string]any) (*entities.ScopeSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scope file: %w", err)
	}
	return l.LoadScope(raw, vars)
}
