package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
)

// RequestSpec is a mutable, structured request waiting to be sent.
type RequestSpec struct {
	headers *Headers
	body    []byte
	host    string
	method  string
	path    string
	query   string
	port    int
	tls     bool
}

// NewRequestSpec creates a GET request for rawURL. Host, port, TLS, path and
// query are taken from the URL; the port defaults to 443 for https and 80
// for http. A Host header is added.
func NewRequestSpec(rawURL string) (*RequestSpec, error) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	spec := &RequestSpec{
		headers: NewHeaders(),
		host:    target.host,
		method:  "GET",
		path:    target.path,
		query:   target.query,
		port:    target.port,
		tls:     target.tls,
	}
	spec.headers.Set("Host", hostPort(spec.host, spec.port, spec.tls))
	return spec, nil
}

type urlTarget struct {
	host  string
	path  string
	query string
	port  int
	tls   bool
}

func parseTarget(rawURL string) (urlTarget, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return urlTarget{}, &errors.ValidationError{Field: "url", Err: err}
	}

	var t urlTarget
	switch strings.ToLower(u.Scheme) {
	case "https":
		t.tls = true
	case "http":
	default:
		return urlTarget{}, &errors.ValidationError{
			Field: "url",
			Err:   fmt.Errorf("unsupported scheme %q", u.Scheme),
		}
	}

	t.host = u.Hostname()
	if t.host == "" {
		return urlTarget{}, &errors.ValidationError{Field: "url", Err: fmt.Errorf("missing host in %q", rawURL)}
	}

	t.port = defaultPort(t.tls)
	if p := u.Port(); p != "" {
		t.port, err = strconv.Atoi(p)
		if err != nil || t.port < 1 || t.port > 65535 {
			return urlTarget{}, &errors.ValidationError{Field: "url", Err: fmt.Errorf("invalid port %q", p)}
		}
	}

	t.path = u.EscapedPath()
	if t.path == "" {
		t.path = "/"
	}
	t.query = u.RawQuery
	return t, nil
}

func (s *RequestSpec) Host() string { return s.host }

// SetHost changes the target host and rewrites an existing Host header.
func (s *RequestSpec) SetHost(host string) {
	s.host = host
	s.refreshHostHeader()
}

func (s *RequestSpec) Port() int { return s.port }

// SetPort changes the target port and rewrites an existing Host header.
func (s *RequestSpec) SetPort(port int) {
	s.port = port
	s.refreshHostHeader()
}

func (s *RequestSpec) TLS() bool { return s.tls }

// SetTLS toggles TLS. The port is left unchanged.
func (s *RequestSpec) SetTLS(tls bool) {
	s.tls = tls
	s.refreshHostHeader()
}

func (s *RequestSpec) Method() string { return s.method }

func (s *RequestSpec) SetMethod(method string) { s.method = method }

func (s *RequestSpec) Path() string { return s.path }

func (s *RequestSpec) SetPath(path string) { s.path = path }

func (s *RequestSpec) Query() string { return s.query }

func (s *RequestSpec) SetQuery(query string) { s.query = query }

// URL reconstructs the absolute URL of the request.
func (s *RequestSpec) URL() string {
	return buildURL(s.host, s.port, s.tls, s.path, s.query)
}

// Headers returns a copy of the headers.
func (s *RequestSpec) Headers() *Headers { return s.headers.Clone() }

// Header returns the values for name, or nil when absent.
func (s *RequestSpec) Header(name string) []string { return s.headers.Get(name) }

// SetHeader replaces all values of name.
func (s *RequestSpec) SetHeader(name string, values ...string) {
	s.ensureHeaders()
	s.headers.Set(name, values...)
}

// AddHeader appends a value to name.
func (s *RequestSpec) AddHeader(name, value string) {
	s.ensureHeaders()
	s.headers.Add(name, value)
}

// RemoveHeader deletes name.
func (s *RequestSpec) RemoveHeader(name string) {
	s.headers.Del(name)
}

// Body returns the body, or nil when none is set. An explicitly empty body
// is returned as an empty *Body.
func (s *RequestSpec) Body() *Body {
	if s.body == nil {
		return nil
	}
	return NewBody(s.body)
}

type bodyOptions struct {
	contentType         string
	updateContentLength bool
}

// BodyOption configures SetBody.
type BodyOption func(*bodyOptions)

// WithContentLength controls whether SetBody maintains the Content-Length
// header. It is enabled by default.
func WithContentLength(update bool) BodyOption {
	return func(o *bodyOptions) {
		o.updateContentLength = update
	}
}

// WithContentType makes SetBody set the Content-Type header.
func WithContentType(contentType string) BodyOption {
	return func(o *bodyOptions) {
		o.contentType = contentType
	}
}

// SetBody replaces the body. A nil b removes it; an empty non-nil b sets an
// empty body with Content-Length: 0.
func (s *RequestSpec) SetBody(b Bytes, opts ...BodyOption) {
	o := bodyOptions{updateContentLength: true}
	for _, opt := range opts {
		opt(&o)
	}

	s.ensureHeaders()
	if b == nil {
		s.body = nil
		if o.updateContentLength {
			s.headers.Del("Content-Length")
		}
		return
	}

	s.body = append([]byte{}, b...)
	if o.updateContentLength {
		s.headers.Set("Content-Length", strconv.Itoa(len(s.body)))
	}
	if o.contentType != "" {
		s.headers.Set("Content-Type", o.contentType)
	}
}

// SetBodyJSON marshals v and sets it as an application/json body.
func (s *RequestSpec) SetBodyJSON(v any, opts ...BodyOption) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}
	s.SetBody(data, append([]BodyOption{WithContentType("application/json")}, opts...)...)
	return nil
}

// Raw renders the request as HTTP/1.1 bytes.
func (s *RequestSpec) Raw() Bytes {
	var buf bytes.Buffer
	target := s.path
	if target == "" {
		target = "/"
	}
	if s.query != "" {
		target += "?" + s.query
	}
	fmt.Fprintf(&buf, "%s %s HTTP/1.1\r\n", s.method, target)
	s.headers.Each(func(name string, values []string) {
		for _, v := range values {
			fmt.Fprintf(&buf, "%s: %s\r\n", name, v)
		}
	})
	buf.WriteString("\r\n")
	buf.Write(s.body)
	return buf.Bytes()
}

// Clone returns an independent copy.
func (s *RequestSpec) Clone() *RequestSpec {
	out := *s
	out.headers = s.headers.Clone()
	out.body = bytes.Clone(s.body)
	return &out
}

// Wire returns the wire form of s.
func (s *RequestSpec) Wire() entities.RequestSpecWire {
	return entities.RequestSpecWire{
		Headers: s.headers.toWire(),
		Body:    bytes.Clone(s.body),
		Host:    s.host,
		Method:  s.method,
		Path:    s.path,
		Query:   s.query,
		Port:    s.port,
		TLS:     s.tls,
	}
}

func (s *RequestSpec) sendRequest() entities.SendRequest {
	w := s.Wire()
	return entities.SendRequest{Spec: &w}
}

func (s *RequestSpec) scopeTarget() entities.ScopeTarget {
	return entities.ScopeTarget{Host: s.host, Path: s.path, Query: s.query, Port: s.port, TLS: s.tls}
}

func (s *RequestSpec) ensureHeaders() {
	if s.headers == nil {
		s.headers = NewHeaders()
	}
}

func (s *RequestSpec) refreshHostHeader() {
	if s.headers.Has("Host") {
		s.headers.Set("Host", hostPort(s.host, s.port, s.tls))
	}
}
