package hostfuncs

import (
	"bytes"
	"context"
	"crypto/tls"
	stdErrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// Error codes reported in SendResponse.Error.Code.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeTimeout           = "TIMEOUT"
	CodeHostNotFound      = "HOST_NOT_FOUND"
	CodeConnectionRefused = "CONNECTION_REFUSED"
	CodeProxyFailed       = "PROXY_FAILED"
	CodeRequestFailed     = "REQUEST_FAILED"
	CodeReadBodyFailed    = "READ_BODY_FAILED"
)

// SendOption is a functional option for configuring request sending.
type SendOption func(*sendConfig)

type sendConfig struct {
	client      *http.Client
	proxyURL    *url.URL
	tlsConfig   *tls.Config
	newID       func() string
	now         func() time.Time
	timeout     time.Duration
	maxBodySize int64
	insecureTLS bool
}

func defaultSendConfig() sendConfig {
	return sendConfig{
		newID:       uuid.NewString,
		now:         time.Now,
		timeout:     30 * time.Second,
		maxBodySize: 10 * 1024 * 1024, // 10MB
	}
}

// WithSendTimeout bounds the whole exchange, from dialing to reading the body.
func WithSendTimeout(d time.Duration) SendOption {
	return func(c *sendConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSendMaxBodySize sets the maximum response body size. Larger bodies
// are truncated.
func WithSendMaxBodySize(size int64) SendOption {
	return func(c *sendConfig) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithSendInsecureTLS disables certificate verification of targets.
func WithSendInsecureTLS(insecure bool) SendOption {
	return func(c *sendConfig) {
		c.insecureTLS = insecure
	}
}

// WithSendTLSConfig sets the base TLS configuration used for targets.
func WithSendTLSConfig(cfg *tls.Config) SendOption {
	return func(c *sendConfig) {
		c.tlsConfig = cfg
	}
}

// WithSendProxy routes requests through an upstream proxy. Supported schemes
// are http, https, socks5 and socks5h. A nil URL disables proxying.
func WithSendProxy(u *url.URL) SendOption {
	return func(c *sendConfig) {
		c.proxyURL = u
	}
}

// WithSendClient sends structured requests through client instead of a
// per-call client. Proxy and TLS options then only apply to raw sends, so
// build client with NewSendClient from the same options.
func WithSendClient(client *http.Client) SendOption {
	return func(c *sendConfig) {
		c.client = client
	}
}

// NewSendClient builds a reusable client for structured sends: redirects off,
// proxy and target TLS taken from opts. Share it across calls with
// WithSendClient so connections are pooled.
func NewSendClient(opts ...SendOption) (*http.Client, error) {
	cfg := defaultSendConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newHTTPClient(cfg, false)
}

// WithSendIDGenerator replaces the request/response id generator.
func WithSendIDGenerator(fn func() string) SendOption {
	return func(c *sendConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// PerformSend sends a structured or raw request and returns the request as
// sent together with the response. Redirects are never followed.
// This is a pure Go implementation with no WASM runtime dependencies.
func PerformSend(ctx context.Context, req entities.SendRequest, opts ...SendOption) entities.SendResponse {
	cfg := defaultSendConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateSendRequest(req); err != nil {
		return entities.SendResponse{Error: err}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	if req.Raw != nil {
		return sendRaw(ctx, *req.Raw, cfg)
	}
	return sendStructured(ctx, *req.Spec, cfg)
}

func validateSendRequest(req entities.SendRequest) *entities.ErrorDetail {
	var host string
	var port int
	switch {
	case req.Spec != nil && req.Raw != nil:
		return invalidRequest("exactly one of spec or raw must be set, got both")
	case req.Spec != nil:
		host, port = req.Spec.Host, req.Spec.Port
	case req.Raw != nil:
		if len(req.Raw.Raw) == 0 {
			return invalidRequest("raw request is empty")
		}
		host, port = req.Raw.Host, req.Raw.Port
	default:
		return invalidRequest("exactly one of spec or raw must be set, got neither")
	}

	if host == "" {
		return invalidRequest("host is required")
	}
	if port < 1 || port > 65535 {
		return invalidRequest(fmt.Sprintf("port %d out of range", port))
	}
	return nil
}

func invalidRequest(msg string) *entities.ErrorDetail {
	return &entities.ErrorDetail{Type: "validation", Code: CodeInvalidRequest, Message: msg}
}

// sendStructured performs the request through net/http.
func sendStructured(ctx context.Context, spec entities.RequestSpecWire, cfg sendConfig) entities.SendResponse {
	method := strings.ToUpper(spec.Method)
	if method == "" {
		method = http.MethodGet
	}

	target := targetURL(spec)
	var body io.Reader
	if len(spec.Body) > 0 {
		body = bytes.NewReader(spec.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return entities.SendResponse{Error: invalidRequest(err.Error())}
	}
	applyHeaders(httpReq, spec.Headers)

	sent := entities.RequestWire{
		CreatedAt: cfg.now(),
		Headers:   spec.Headers,
		Body:      spec.Body,
		ID:        cfg.newID(),
		Host:      spec.Host,
		Method:    method,
		Path:      spec.Path,
		Query:     spec.Query,
		Port:      spec.Port,
		TLS:       spec.TLS,
	}

	client := cfg.client
	if client == nil {
		var err error
		if client, err = newHTTPClient(cfg, true); err != nil {
			return entities.SendResponse{Request: &sent, Error: classifySendError(ctx, err)}
		}
		defer client.CloseIdleConnections()
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return entities.SendResponse{Request: &sent, Error: classifySendError(ctx, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	return readResponse(ctx, resp, &sent, start, cfg)
}

func targetURL(spec entities.RequestSpecWire) string {
	scheme := "http"
	if spec.TLS {
		scheme = "https"
	}
	path := spec.Path
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	u := scheme + "://" + net.JoinHostPort(spec.Host, strconv.Itoa(spec.Port)) + path
	if spec.Query != "" {
		u += "?" + spec.Query
	}
	return u
}

// applyHeaders copies headers without canonicalizing names. Host sets the
// request host; Content-Length is derived from the body by net/http. The
// default Go User-Agent is suppressed so the wire carries only the script's
// headers.
func applyHeaders(req *http.Request, headers []entities.HeaderField) {
	for _, h := range headers {
		switch {
		case strings.EqualFold(h.Name, "Host"):
			if len(h.Values) > 0 {
				req.Host = h.Values[0]
			}
		case strings.EqualFold(h.Name, "Content-Length"):
		default:
			req.Header[h.Name] = append(req.Header[h.Name], h.Values...)
		}
	}
	if _, ok := req.Header["User-Agent"]; !ok {
		req.Header["User-Agent"] = []string{""}
	}
}

func (c sendConfig) targetTLSConfig(serverName string) *tls.Config {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.tlsConfig != nil {
		cfg = c.tlsConfig.Clone()
	}
	if c.insecureTLS {
		cfg.InsecureSkipVerify = true //nolint:gosec // explicitly requested by configuration
	}
	if serverName != "" {
		cfg.ServerName = serverName
	}
	return cfg
}

// newHTTPClient builds the structured-send client. One-shot clients disable
// keep-alives so nothing outlives the call.
func newHTTPClient(cfg sendConfig, oneShot bool) (*http.Client, error) {
	transport := &http.Transport{
		DisableKeepAlives:     oneShot,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       cfg.targetTLSConfig(""),
		DisableCompression:    true,
	}

	if cfg.proxyURL != nil {
		switch strings.ToLower(cfg.proxyURL.Scheme) {
		case "http", "https":
			transport.Proxy = http.ProxyURL(cfg.proxyURL)
		default:
			dial, err := socksDialer(cfg.proxyURL)
			if err != nil {
				return nil, err
			}
			transport.DialContext = dial
		}
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// readResponse reads the body with a size limit and assembles the reply.
func readResponse(ctx context.Context, resp *http.Response, sent *entities.RequestWire, start time.Time, cfg sendConfig) entities.SendResponse {
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, cfg.maxBodySize+1))
	roundtrip := time.Since(start)
	if err != nil {
		detail := classifySendError(ctx, err)
		if detail.Code == CodeRequestFailed {
			detail.Code = CodeReadBodyFailed
		}
		return entities.SendResponse{Request: sent, Error: detail}
	}

	truncated := false
	if int64(len(respBody)) > cfg.maxBodySize {
		respBody = respBody[:cfg.maxBodySize]
		truncated = true
	}

	return entities.SendResponse{
		Request: sent,
		Response: &entities.ResponseWire{
			CreatedAt:   cfg.now(),
			Headers:     headerFields(resp.Header),
			Body:        respBody,
			ID:          cfg.newID(),
			Code:        resp.StatusCode,
			RoundtripMs: roundtrip.Milliseconds(),
			Truncated:   truncated,
		},
	}
}

// headerFields flattens an http.Header in sorted name order; net/http does
// not retain the order headers arrived in.
func headerFields(h http.Header) []entities.HeaderField {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]entities.HeaderField, 0, len(names))
	for _, name := range names {
		fields = append(fields, entities.HeaderField{Name: name, Values: h[name]})
	}
	return fields
}

// proxyError marks failures talking to the upstream proxy.
type proxyError struct {
	err error
}

func (e *proxyError) Error() string { return "proxy: " + e.err.Error() }

func (e *proxyError) Unwrap() error { return e.err }

// classifySendError maps a transport error onto an ErrorDetail.
func classifySendError(ctx context.Context, err error) *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Type: "network", Code: CodeRequestFailed, Message: err.Error()}

	var netErr net.Error
	var dnsErr *net.DNSError
	var pErr *proxyError
	switch {
	case stdErrors.Is(ctx.Err(), context.DeadlineExceeded),
		stdErrors.Is(err, context.DeadlineExceeded),
		stdErrors.As(err, &netErr) && netErr.Timeout():
		detail.Type = "timeout"
		detail.Code = CodeTimeout
		detail.IsTimeout = true
	case stdErrors.As(err, &pErr), strings.Contains(err.Error(), "proxyconnect"):
		detail.Code = CodeProxyFailed
	case stdErrors.As(err, &dnsErr):
		detail.Code = CodeHostNotFound
	case stdErrors.Is(err, syscall.ECONNREFUSED), strings.Contains(err.Error(), "connection refused"):
		detail.Code = CodeConnectionRefused
	}
	return detail
}
