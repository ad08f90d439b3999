package hostfuncs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleBundle(t *testing.T) {
	bundle := ConsoleBundle(nil, nil)
	handlers := bundle.Handlers()

	assert.Len(t, handlers, 1)
	assert.Contains(t, handlers, entities.FuncConsoleLog)
}

func TestRequestsBundle(t *testing.T) {
	bundle := RequestsBundle(allowAll{})
	handlers := bundle.Handlers()

	assert.Len(t, handlers, 2)
	assert.Contains(t, handlers, entities.FuncRequestsSend)
	assert.Contains(t, handlers, entities.FuncRequestsScope)
}

func TestFindingsBundle(t *testing.T) {
	bundle := FindingsBundle(newFakeStore())
	handlers := bundle.Handlers()

	assert.Len(t, handlers, 1)
	assert.Contains(t, handlers, entities.FuncFindingsCreate)
}

func TestAllBundles(t *testing.T) {
	bundle := AllBundles(HostServices{Scope: allowAll{}, Findings: newFakeStore()})
	handlers := bundle.Handlers()

	assert.Len(t, handlers, 4)
	assert.Contains(t, handlers, entities.FuncConsoleLog)
	assert.Contains(t, handlers, entities.FuncRequestsSend)
	assert.Contains(t, handlers, entities.FuncRequestsScope)
	assert.Contains(t, handlers, entities.FuncFindingsCreate)
}

func TestWithBundle(t *testing.T) {
	reg, err := NewRegistry(
		WithBundle(RequestsBundle(allowAll{})),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{entities.FuncRequestsScope, entities.FuncRequestsSend}, reg.Names())
}

func TestWithBundle_AllBundles(t *testing.T) {
	reg, err := NewRegistry(
		WithBundle(AllBundles(HostServices{})),
	)
	require.NoError(t, err)

	assert.Len(t, reg.Names(), 4)
}

func TestWithBundle_DuplicateAcrossBundles(t *testing.T) {
	_, err := NewRegistry(
		WithBundle(ConsoleBundle(nil, nil)),
		WithBundle(AllBundles(HostServices{})),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), entities.FuncConsoleLog)
}

func TestAllBundles_ScopeCheckThroughRegistry(t *testing.T) {
	reg, err := NewRegistry(
		WithBundle(AllBundles(HostServices{Scope: allowAll{}})),
	)
	require.NoError(t, err)

	payload, err := json.Marshal(entities.ScopeCheckRequest{Target: entities.ScopeTarget{Host: "example.com", Port: 443, TLS: true}})
	require.NoError(t, err)

	out, err := reg.Invoke(context.Background(), entities.FuncRequestsScope, payload)
	require.NoError(t, err)

	var resp entities.ScopeCheckResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Nil(t, resp.Error)
	assert.True(t, resp.InScope)
}

func TestWithHandler_Generic(t *testing.T) {
	type CustomReq struct {
		Input string `json:"input"`
	}
	type CustomResp struct {
		Output string `json:"output"`
	}

	reg, err := NewRegistry(
		WithHandler("custom", func(ctx context.Context, req CustomReq) CustomResp {
			return CustomResp{Output: "processed: " + req.Input}
		}),
	)
	require.NoError(t, err)

	assert.True(t, reg.Has("custom"))

	reqBytes, _ := json.Marshal(CustomReq{Input: "test"})
	respBytes, err := reg.Invoke(context.Background(), "custom", reqBytes)
	require.NoError(t, err)

	var resp CustomResp
	require.NoError(t, json.Unmarshal(respBytes, &resp))
	assert.Equal(t, "processed: test", resp.Output)
}

func TestWithHandler_AndBundle_Combined(t *testing.T) {
	type CustomReq struct {
		Value int `json:"value"`
	}
	type CustomResp struct {
		Doubled int `json:"doubled"`
	}

	reg, err := NewRegistry(
		WithBundle(FindingsBundle(newFakeStore())),
		WithHandler("double", func(ctx context.Context, req CustomReq) CustomResp {
			return CustomResp{Doubled: req.Value * 2}
		}),
	)
	require.NoError(t, err)

	names := reg.Names()
	assert.Len(t, names, 2)
	assert.Contains(t, names, entities.FuncFindingsCreate)
	assert.Contains(t, names, "double")

	reqBytes, _ := json.Marshal(CustomReq{Value: 21})
	respBytes, err := reg.Invoke(context.Background(), "double", reqBytes)
	require.NoError(t, err)

	var resp CustomResp
	require.NoError(t, json.Unmarshal(respBytes, &resp))
	assert.Equal(t, 42, resp.Doubled)
}
