// Package template renders scope files with host-supplied variables, so one
// file can serve several engagements ({{.vars.target}}, {{env "TARGET"}}).
package template

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// templateConfig holds configuration for the GoTemplateEngine.
type templateConfig struct {
	lookupEnv func(string) (string, bool)
	strict    bool // Fail on missing keys and unset env variables
}

func defaultTemplateConfig() templateConfig {
	return templateConfig{
		lookupEnv: os.LookupEnv,
		strict:    true,
	}
}

// TemplateOption configures a GoTemplateEngine.
type TemplateOption func(*templateConfig)

// WithStrict enables/disables strict mode.
// When enabled (default), rendering fails if a referenced key or env variable is missing.
func WithStrict(enabled bool) TemplateOption {
	return func(c *templateConfig) {
		c.strict = enabled
	}
}

// WithEnvLookup replaces the environment lookup used by the env function.
func WithEnvLookup(fn func(string) (string, bool)) TemplateOption {
	return func(c *templateConfig) {
		if fn != nil {
			c.lookupEnv = fn
		}
	}
}

// GoTemplateEngine implements ports.TemplateEngine using text/template.
type GoTemplateEngine struct {
	config templateConfig
}

var _ ports.TemplateEngine = (*GoTemplateEngine)(nil)

// NewGoTemplateEngine creates a new GoTemplateEngine.
func NewGoTemplateEngine(opts ...TemplateOption) *GoTemplateEngine {
	cfg := defaultTemplateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GoTemplateEngine{config: cfg}
}

// Render executes raw as a template. Variables are reachable as {{.vars.key}}.
func (e *GoTemplateEngine) Render(raw []byte, vars map[string]any) ([]byte, error) {
	tmpl := template.New("scope").Funcs(template.FuncMap{
		"env": e.env,
	})

	if e.config.strict {
		tmpl = tmpl.Option("missingkey=error")
	}

	tmpl, err := tmpl.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scope template: %w", err)
	}

	if vars == nil {
		vars = map[string]any{}
	}
	data := map[string]any{
		"vars": vars,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute scope template: %w", err)
	}

	return buf.Bytes(), nil
}

func (e *GoTemplateEngine) env(name string) (string, error) {
	v, ok := e.config.lookupEnv(name)
	if !ok && e.config.strict {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}
	return v, nil
}
