package remote_test

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/proxyscript/script-sdk/go"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/hostfuncs"
	"github.com/proxyscript/script-sdk/go/infrastructure/remote"
	"github.com/proxyscript/script-sdk/go/server"
)

func newBridge(t *testing.T, opts ...server.Option) *httptest.Server {
	t.Helper()
	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithHandler[entities.ScopeCheckRequest, entities.ScopeCheckResponse](entities.FuncRequestsScope, func(_ context.Context, req entities.ScopeCheckRequest) entities.ScopeCheckResponse {
			return entities.ScopeCheckResponse{InScope: req.Target.Host == "example.com"}
		}),
	)
	require.NoError(t, err)
	srv := httptest.NewServer(server.New(reg, nil, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewInvoker_RejectsBadURL(t *testing.T) {
	_, err := remote.NewInvoker("ftp://example.com")
	var ve *errors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "baseURL", ve.Field)
}

func TestInvoke_RoundTrip(t *testing.T) {
	bridge := newBridge(t)
	inv, err := remote.NewInvoker(bridge.URL)
	require.NoError(t, err)

	reply, err := inv.Invoke(context.Background(), entities.FuncRequestsScope, []byte(`{"target":{"host":"example.com","port":443,"path":"/","tls":true}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"in_scope":true}`, string(reply))
}

func TestInvoke_FaultIsReturnedAsReply(t *testing.T) {
	bridge := newBridge(t)
	inv, err := remote.NewInvoker(bridge.URL)
	require.NoError(t, err)

	reply, err := inv.Invoke(context.Background(), "nope", []byte(`{}`))
	require.NoError(t, err)
	fault, ok := entities.ParseHostFault(reply)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", fault.Error)
	assert.Equal(t, http.StatusNotFound, fault.Code)
}

func TestInvoke_AuthToken(t *testing.T) {
	bridge := newBridge(t, server.WithAuthToken("tok"))

	inv, err := remote.NewInvoker(bridge.URL, remote.WithAuthToken("tok"))
	require.NoError(t, err)
	_, err = inv.Invoke(context.Background(), entities.FuncRequestsScope, []byte(`{"target":{"host":"example.com"}}`))
	require.NoError(t, err)

	anon, err := remote.NewInvoker(bridge.URL)
	require.NoError(t, err)
	reply, err := anon.Invoke(context.Background(), entities.FuncRequestsScope, []byte(`{"target":{"host":"example.com"}}`))
	require.NoError(t, err)
	fault, ok := entities.ParseHostFault(reply)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", fault.Error)
}

func TestInvoke_NonFaultErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}))
	defer srv.Close()

	inv, err := remote.NewInvoker(srv.URL)
	require.NoError(t, err)

	_, err = inv.Invoke(context.Background(), entities.FuncConsoleLog, []byte(`{}`))
	var ne *errors.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "invoke", ne.Operation)
}

func TestInvoke_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	inv, err := remote.NewInvoker(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = inv.Invoke(ctx, entities.FuncConsoleLog, []byte(`{}`))
	var te *errors.TimeoutError
	require.True(t, stdErrors.As(err, &te))
}

func TestSDKOverBridge(t *testing.T) {
	bridge := newBridge(t)
	inv, err := remote.NewInvoker(bridge.URL)
	require.NoError(t, err)

	s := sdk.New(inv)
	req, err := sdk.NewRequestSpec("https://example.com/")
	require.NoError(t, err)
	assert.True(t, s.Requests.InScope(req))

	other, err := sdk.NewRequestSpec("https://other.test/")
	require.NoError(t, err)
	assert.False(t, s.Requests.InScope(other))
}
