package sdk

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// Request is an immutable snapshot of a request the host has seen or sent.
type Request struct {
	createdAt time.Time
	headers   *Headers
	body      *Body
	id        string
	host      string
	method    string
	path      string
	query     string
	port      int
	tls       bool
}

// RequestFromWire builds a Request from its wire form.
func RequestFromWire(w entities.RequestWire) *Request {
	r := &Request{
		createdAt: w.CreatedAt,
		headers:   headersFromWire(w.Headers),
		id:        w.ID,
		host:      w.Host,
		method:    w.Method,
		path:      w.Path,
		query:     w.Query,
		port:      w.Port,
		tls:       w.TLS,
	}
	if len(w.Body) > 0 {
		r.body = NewBody(w.Body)
	}
	return r
}

// Wire returns the wire form of r.
func (r *Request) Wire() entities.RequestWire {
	return entities.RequestWire{
		CreatedAt: r.createdAt,
		Headers:   r.headers.toWire(),
		Body:      r.body.Raw(),
		ID:        r.id,
		Host:      r.host,
		Method:    r.method,
		Path:      r.path,
		Query:     r.query,
		Port:      r.port,
		TLS:       r.tls,
	}
}

// ID returns the host-assigned identifier.
func (r *Request) ID() string { return r.id }

func (r *Request) Host() string { return r.host }

func (r *Request) Port() int { return r.port }

func (r *Request) TLS() bool { return r.tls }

func (r *Request) Method() string { return r.method }

func (r *Request) Path() string { return r.path }

func (r *Request) Query() string { return r.query }

func (r *Request) CreatedAt() time.Time { return r.createdAt }

// Headers returns a copy of the request headers.
func (r *Request) Headers() *Headers { return r.headers.Clone() }

// Header returns the values for name, or nil when absent.
func (r *Request) Header(name string) []string { return r.headers.Get(name) }

// Body returns the request body, or nil when there is none.
func (r *Request) Body() *Body { return r.body }

// URL reconstructs the absolute URL of the request.
func (r *Request) URL() string {
	return buildURL(r.host, r.port, r.tls, r.path, r.query)
}

// ToSpec returns an editable copy of the request.
func (r *Request) ToSpec() *RequestSpec {
	spec := &RequestSpec{
		headers: r.headers.Clone(),
		host:    r.host,
		method:  r.method,
		path:    r.path,
		query:   r.query,
		port:    r.port,
		tls:     r.tls,
	}
	if r.body != nil {
		spec.body = r.body.Raw()
	}
	return spec
}

// ToSpecRaw returns an editable raw copy of the request, rendered as HTTP/1.1.
func (r *Request) ToSpecRaw() *RequestSpecRaw {
	return &RequestSpecRaw{
		raw:  r.ToSpec().Raw(),
		host: r.host,
		port: r.port,
		tls:  r.tls,
	}
}

func (r *Request) scopeTarget() entities.ScopeTarget {
	return entities.ScopeTarget{Host: r.host, Path: r.path, Query: r.query, Port: r.port, TLS: r.tls}
}

func defaultPort(tls bool) int {
	if tls {
		return 443
	}
	return 80
}

// hostPort renders host with the port omitted when it is the scheme default.
func hostPort(host string, port int, tls bool) string {
	if port == 0 || port == defaultPort(tls) {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func buildURL(host string, port int, tls bool, path, query string) string {
	var b strings.Builder
	if tls {
		b.WriteString("https://")
	} else {
		b.WriteString("http://")
	}
	b.WriteString(hostPort(host, port, tls))
	if path == "" || path[0] != '/' {
		b.WriteByte('/')
	}
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String()
}
