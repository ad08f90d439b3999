package hostfuncs

import (
	"context"
	stdErrors "errors"
	"strings"
	"testing"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findingRequest() entities.CreateFindingRequest {
	return entities.CreateFindingRequest{
		Request: entities.RequestWire{
			ID:     "req-1",
			Host:   "example.com",
			Port:   8443,
			Method: "GET",
			Path:   "/admin",
			TLS:    true,
		},
		Title:       "Exposed admin panel",
		Description: "The admin panel is reachable without authentication.",
		Reporter:    "admin-scanner",
	}
}

func TestPerformCreateFinding(t *testing.T) {
	store := newFakeStore()

	resp := PerformCreateFinding(context.Background(), store, findingRequest())

	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Finding)
	assert.Equal(t, "finding-1", resp.Finding.ID)
	assert.Equal(t, "Exposed admin panel", resp.Finding.Title)
	assert.Equal(t, "admin-scanner", resp.Finding.Reporter)
	assert.Equal(t, "req-1", resp.Finding.RequestID)
	assert.Equal(t, "example.com:8443", resp.Finding.Target)

	stored, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPerformCreateFinding_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*entities.CreateFindingRequest)
		wantField string
	}{
		{
			name:      "missing title",
			mutate:    func(r *entities.CreateFindingRequest) { r.Title = "" },
			wantField: "Title",
		},
		{
			name:      "title too long",
			mutate:    func(r *entities.CreateFindingRequest) { r.Title = strings.Repeat("t", 513) },
			wantField: "Title",
		},
		{
			name:      "missing reporter",
			mutate:    func(r *entities.CreateFindingRequest) { r.Reporter = "" },
			wantField: "Reporter",
		},
		{
			name:      "unknown request",
			mutate:    func(r *entities.CreateFindingRequest) { r.Request.ID = "" },
			wantField: "Request.ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			req := findingRequest()
			tt.mutate(&req)

			resp := PerformCreateFinding(context.Background(), store, req)

			require.NotNil(t, resp.Error)
			assert.Nil(t, resp.Finding)
			assert.Equal(t, "validation", resp.Error.Type)
			assert.Contains(t, resp.Error.Message, tt.wantField)

			stored, err := store.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestPerformCreateFinding_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failWith = stdErrors.New("disk full")

	resp := PerformCreateFinding(context.Background(), store, findingRequest())

	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "disk full")
	assert.Nil(t, resp.Finding)
}

func TestPerformCreateFinding_NoStore(t *testing.T) {
	resp := PerformCreateFinding(context.Background(), nil, findingRequest())

	require.NotNil(t, resp.Error)
	assert.Equal(t, "storage", resp.Error.Type)
}

func TestFindingTarget(t *testing.T) {
	assert.Equal(t, "", findingTarget(entities.RequestWire{}))
	assert.Equal(t, "example.com", findingTarget(entities.RequestWire{Host: "example.com"}))
	assert.Equal(t, "[::1]:8080", findingTarget(entities.RequestWire{Host: "::1", Port: 8080}))
}
