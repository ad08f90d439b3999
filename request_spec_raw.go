package sdk

import (
	"bytes"

	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// RequestSpecRaw is a pending request given as verbatim bytes plus the
// connection target they are written to.
type RequestSpecRaw struct {
	raw  []byte
	host string
	port int
	tls  bool
}

// NewRequestSpecRaw creates a raw request for rawURL, initialised with the
// rendering of the equivalent NewRequestSpec.
func NewRequestSpecRaw(rawURL string) (*RequestSpecRaw, error) {
	spec, err := NewRequestSpec(rawURL)
	if err != nil {
		return nil, err
	}
	return &RequestSpecRaw{
		raw:  spec.Raw(),
		host: spec.host,
		port: spec.port,
		tls:  spec.tls,
	}, nil
}

func (s *RequestSpecRaw) Host() string { return s.host }

func (s *RequestSpecRaw) SetHost(host string) { s.host = host }

func (s *RequestSpecRaw) Port() int { return s.port }

func (s *RequestSpecRaw) SetPort(port int) { s.port = port }

func (s *RequestSpecRaw) TLS() bool { return s.tls }

func (s *RequestSpecRaw) SetTLS(tls bool) { s.tls = tls }

// Raw returns a copy of the request bytes.
func (s *RequestSpecRaw) Raw() Bytes { return bytes.Clone(s.raw) }

// SetRaw replaces the request bytes. They are sent exactly as given.
func (s *RequestSpecRaw) SetRaw(raw Bytes) { s.raw = bytes.Clone([]byte(raw)) }

// Wire returns the wire form of s.
func (s *RequestSpecRaw) Wire() entities.RawSpecWire {
	return entities.RawSpecWire{
		Raw:  bytes.Clone(s.raw),
		Host: s.host,
		Port: s.port,
		TLS:  s.tls,
	}
}

func (s *RequestSpecRaw) sendRequest() entities.SendRequest {
	w := s.Wire()
	return entities.SendRequest{Raw: &w}
}
