package template_test

import (
	"testing"

	"github.com/proxyscript/script-sdk/go/application/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func TestGoTemplateEngine_Render(t *testing.T) {
	engine := template.NewGoTemplateEngine(template.WithEnvLookup(fakeEnv(map[string]string{
		"TARGET_PORT": "8443",
	})))

	t.Run("Successful Resolution", func(t *testing.T) {
		raw := []byte("allow:\n  - hosts: [\"{{.vars.target}}\"]\n")
		out, err := engine.Render(raw, map[string]any{"target": "*.example.com"})
		require.NoError(t, err)
		assert.Contains(t, string(out), `hosts: ["*.example.com"]`)
	})

	t.Run("Env Function", func(t *testing.T) {
		raw := []byte(`ports: ["{{env "TARGET_PORT"}}"]`)
		out, err := engine.Render(raw, nil)
		require.NoError(t, err)
		assert.Equal(t, `ports: ["8443"]`, string(out))
	})

	t.Run("Missing Key Fails", func(t *testing.T) {
		raw := []byte(`hosts: ["{{.vars.missing}}"]`)
		_, err := engine.Render(raw, map[string]any{"target": "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "map has no entry for key")
	})

	t.Run("Unset Env Fails", func(t *testing.T) {
		_, err := engine.Render([]byte(`{{env "NOPE"}}`), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOPE")
	})

	t.Run("Invalid Template Syntax", func(t *testing.T) {
		_, err := engine.Render([]byte(`hosts: ["{{.vars.target"]`), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse scope template")
	})

	t.Run("Plain Document Unchanged", func(t *testing.T) {
		raw := []byte("deny:\n  - paths: [\"/logout\"]\n")
		out, err := engine.Render(raw, nil)
		require.NoError(t, err)
		assert.Equal(t, raw, out)
	})
}

func TestGoTemplateEngine_Lenient(t *testing.T) {
	engine := template.NewGoTemplateEngine(
		template.WithStrict(false),
		template.WithEnvLookup(fakeEnv(nil)),
	)

	out, err := engine.Render([]byte(`a={{.vars.missing}} b={{env "NOPE"}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "a=<no value> b=", string(out))
}
