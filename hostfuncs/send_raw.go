package hostfuncs

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"golang.org/x/net/proxy"
)

// sendRaw writes the raw bytes verbatim to the target and parses whatever
// comes back as an HTTP/1.x response.
func sendRaw(ctx context.Context, raw entities.RawSpecWire, cfg sendConfig) entities.SendResponse {
	sent, parsed := rawRequestWire(raw, cfg)
	addr := net.JoinHostPort(raw.Host, strconv.Itoa(raw.Port))

	conn, err := dialTarget(ctx, addr, cfg)
	if err != nil {
		return entities.SendResponse{Request: &sent, Error: classifySendError(ctx, err)}
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if raw.TLS {
		tlsConn := tls.Client(conn, cfg.targetTLSConfig(raw.Host))
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return entities.SendResponse{Request: &sent, Error: classifySendError(ctx, err)}
		}
		conn = tlsConn
	}

	start := time.Now()
	if _, err := conn.Write(raw.Raw); err != nil {
		return entities.SendResponse{Request: &sent, Error: classifySendError(ctx, err)}
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), parsed)
	if err != nil {
		return entities.SendResponse{Request: &sent, Error: classifySendError(ctx, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	return readResponse(ctx, resp, &sent, start, cfg)
}

// rawRequestWire describes the raw request for the reply. When the bytes
// parse as HTTP/1.x, method, path, query, headers and body are filled in and
// the parsed request is returned so the response is read correctly (HEAD).
func rawRequestWire(raw entities.RawSpecWire, cfg sendConfig) (entities.RequestWire, *http.Request) {
	w := entities.RequestWire{
		CreatedAt: cfg.now(),
		ID:        cfg.newID(),
		Host:      raw.Host,
		Port:      raw.Port,
		TLS:       raw.TLS,
	}

	parsed, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(raw.Raw)))
	if err != nil {
		return w, nil
	}
	w.Method = parsed.Method
	w.Path = parsed.URL.EscapedPath()
	if parsed.RequestURI == "*" {
		w.Path = "*"
	}
	w.Query = parsed.URL.RawQuery
	w.Headers = rawHeaderFields(raw.Raw)
	if parsed.Body != nil {
		body, _ := io.ReadAll(io.LimitReader(parsed.Body, cfg.maxBodySize))
		if len(body) > 0 {
			w.Body = body
		}
	}
	return w, parsed
}

// rawHeaderFields extracts headers in the order they appear in raw,
// keeping names exactly as written.
func rawHeaderFields(raw []byte) []entities.HeaderField {
	head, _, _ := bytes.Cut(raw, []byte("\r\n\r\n"))
	lines := strings.Split(strings.ReplaceAll(string(head), "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil
	}

	var fields []entities.HeaderField
	index := make(map[string]int)
	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if i, seen := index[name]; seen {
			fields[i].Values = append(fields[i].Values, value)
			continue
		}
		index[name] = len(fields)
		fields = append(fields, entities.HeaderField{Name: name, Values: []string{value}})
	}
	return fields
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// dialTarget opens a TCP connection to addr, through the configured proxy
// when there is one.
func dialTarget(ctx context.Context, addr string, cfg sendConfig) (net.Conn, error) {
	if cfg.proxyURL == nil {
		return (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}

	switch strings.ToLower(cfg.proxyURL.Scheme) {
	case "http", "https":
		return connectTunnel(ctx, cfg, addr)
	default:
		dial, err := socksDialer(cfg.proxyURL)
		if err != nil {
			return nil, err
		}
		return dial(ctx, "tcp", addr)
	}
}

// socksDialer builds a dialer for socks5:// and socks5h:// proxies.
func socksDialer(u *url.URL) (dialFunc, error) {
	d, err := proxy.FromURL(u, &net.Dialer{})
	if err != nil {
		return nil, &proxyError{err: err}
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var conn net.Conn
		var err error
		if cd, ok := d.(proxy.ContextDialer); ok {
			conn, err = cd.DialContext(ctx, network, addr)
		} else {
			conn, err = d.Dial(network, addr)
		}
		if err != nil {
			return nil, &proxyError{err: err}
		}
		return conn, nil
	}, nil
}

// connectTunnel asks an HTTP proxy for a CONNECT tunnel to addr.
func connectTunnel(ctx context.Context, cfg sendConfig, addr string) (net.Conn, error) {
	u := cfg.proxyURL
	proxyAddr := u.Host
	if u.Port() == "" {
		port := "80"
		if strings.EqualFold(u.Scheme, "https") {
			port = "443"
		}
		proxyAddr = net.JoinHostPort(u.Hostname(), port)
	}

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", proxyAddr)
	if err != nil {
		return nil, &proxyError{err: err}
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if strings.EqualFold(u.Scheme, "https") {
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         u.Hostname(),
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.insecureTLS, //nolint:gosec // explicitly requested by configuration
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return nil, &proxyError{err: err}
		}
		conn = tlsConn
	}

	connectReq := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if u.User != nil {
		password, _ := u.User.Password()
		creds := base64.StdEncoding.EncodeToString([]byte(u.User.Username() + ":" + password))
		connectReq.Header.Set("Proxy-Authorization", "Basic "+creds)
	}
	if err := connectReq.Write(conn); err != nil {
		_ = conn.Close()
		return nil, &proxyError{err: err}
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, connectReq)
	if err != nil {
		_ = conn.Close()
		return nil, &proxyError{err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = conn.Close()
		return nil, &proxyError{err: fmt.Errorf("CONNECT %s returned %s", addr, resp.Status)}
	}

	_ = conn.SetDeadline(time.Time{})
	if br.Buffered() > 0 {
		return &bufferedConn{Conn: conn, r: br}, nil
	}
	return conn, nil
}

// bufferedConn replays bytes the proxy sent right after its CONNECT reply.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}
