// Package remote implements ports.HostInvoker against a bridge server, so an
// SDK instance can reach host functions served by another process.
package remote

import (
	"bytes"
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// maxReplySize bounds host function replies read from the bridge (16MB).
const maxReplySize = 16 * 1024 * 1024

// Invoker posts host function calls to a bridge server.
type Invoker struct {
	client  *http.Client
	baseURL *url.URL
	token   string
}

var _ ports.HostInvoker = (*Invoker)(nil)

// Option configures an Invoker.
type Option func(*Invoker)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Invoker) {
		if c != nil {
			i.client = c
		}
	}
}

// WithTimeout bounds each call, including the host function's own work.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) {
		if d > 0 {
			clone := *i.client
			clone.Timeout = d
			i.client = &clone
		}
	}
}

// WithAuthToken sends "Authorization: Bearer <token>" with each call.
func WithAuthToken(token string) Option {
	return func(i *Invoker) {
		i.token = token
	}
}

// NewInvoker creates an Invoker for the bridge at baseURL, e.g. "http://127.0.0.1:8420".
func NewInvoker(baseURL string, opts ...Option) (*Invoker, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, &errors.ValidationError{Field: "baseURL", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &errors.ValidationError{Field: "baseURL", Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	inv := &Invoker{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: u,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// Invoke implements ports.HostInvoker. Fault documents from the bridge are
// returned as replies, the same way a local registry returns them. Only
// transport failures and non-JSON error responses become errors.
func (i *Invoker) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	endpoint := i.baseURL.JoinPath("v1", "hostfuncs", name).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if i.token != "" {
		req.Header.Set("Authorization", "Bearer "+i.token)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && stdErrors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, &errors.TimeoutError{Operation: "invoke", Target: name}
		}
		return nil, &errors.NetworkError{Operation: "invoke", Target: endpoint, Err: err}
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, &errors.NetworkError{Operation: "read", Target: endpoint, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return reply, nil
	}
	if _, ok := entities.ParseHostFault(reply); ok {
		return reply, nil
	}
	return nil, &errors.NetworkError{
		Operation: "invoke",
		Target:    endpoint,
		Err:       fmt.Errorf("unexpected status %d", resp.StatusCode),
	}
}
