package host_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/host"
	"github.com/proxyscript/script-sdk/go/hostfuncs"
)

func scopeCheck(t *testing.T, svc *host.Services, hostname string) bool {
	t.Helper()
	payload, err := json.Marshal(entities.ScopeCheckRequest{Target: entities.ScopeTarget{Host: hostname, Port: 443, TLS: true}})
	require.NoError(t, err)
	out, err := svc.Registry.Invoke(context.Background(), entities.FuncRequestsScope, payload)
	require.NoError(t, err)
	var resp entities.ScopeCheckResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp.InScope
}

func TestNewServices_Registry(t *testing.T) {
	svc := newServices(t, "")

	assert.Equal(t, []string{
		entities.FuncConsoleLog,
		entities.FuncFindingsCreate,
		entities.FuncRequestsScope,
		entities.FuncRequestsSend,
	}, svc.Registry.Names())
	assert.Equal(t, svc.Registry.Names(), svc.Schemas.List())

	// empty scope admits everything
	assert.True(t, scopeCheck(t, svc, "anything.test"))
}

func TestNewServices_RejectsMalformedPayload(t *testing.T) {
	svc := newServices(t, "")

	out, err := svc.Registry.Invoke(context.Background(), entities.FuncFindingsCreate, []byte(`{"title":42}`))
	require.NoError(t, err)

	var fault entities.HostFault
	require.NoError(t, json.Unmarshal(out, &fault))
	assert.Equal(t, "VALIDATION_ERROR", fault.Error)
}

func TestNewServices_CustomHandler(t *testing.T) {
	cfg := host.DefaultConfig(host.WithFindings("memory", ""))
	svc, err := host.NewServices(cfg, discardLogger(),
		hostfuncs.WithHandler("echo", func(_ context.Context, req map[string]any) map[string]any { return req }),
	)
	require.NoError(t, err)
	defer svc.Close()

	out, err := svc.Registry.Invoke(context.Background(), "echo", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(out))

	_, err = host.NewServices(cfg, discardLogger(),
		hostfuncs.WithHandler(entities.FuncConsoleLog, func(_ context.Context, req map[string]any) map[string]any { return req }),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered twice")
}

func TestNewServices_ReloadScope(t *testing.T) {
	svc := newServices(t, "allow:\n  - hosts: [\"a.example.com\"]\n")
	assert.True(t, scopeCheck(t, svc, "a.example.com"))
	assert.False(t, scopeCheck(t, svc, "b.example.com"))

	require.NoError(t, os.WriteFile(svc.Config.ScopeFile, []byte("allow:\n  - hosts: [\"b.example.com\"]\n"), 0o600))
	require.NoError(t, svc.ReloadScope())
	assert.False(t, scopeCheck(t, svc, "a.example.com"))
	assert.True(t, scopeCheck(t, svc, "b.example.com"))

	require.NoError(t, os.WriteFile(svc.Config.ScopeFile, []byte("allow:\n  - ports: [\"x\"]\n"), 0o600))
	require.Error(t, svc.ReloadScope())
	assert.True(t, scopeCheck(t, svc, "b.example.com"), "previous rules stay active")
}

func TestNewServices_BadScopeFile(t *testing.T) {
	cfg := host.DefaultConfig(host.WithFindings("memory", ""))
	cfg.ScopeFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := host.NewServices(cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestNewServices_SQLiteFindings(t *testing.T) {
	cfg := host.DefaultConfig(host.WithFindings("sqlite", filepath.Join(t.TempDir(), "db", "findings.db")))
	svc, err := host.NewServices(cfg, discardLogger())
	require.NoError(t, err)
	defer svc.Close()

	list, err := svc.Findings.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
