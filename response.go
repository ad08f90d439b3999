package sdk

import (
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// Response is an immutable snapshot of a response received by the host.
type Response struct {
	createdAt time.Time
	headers   *Headers
	body      *Body
	id        string
	code      int
	roundtrip time.Duration
	truncated bool
}

// ResponseFromWire builds a Response from its wire form.
func ResponseFromWire(w entities.ResponseWire) *Response {
	r := &Response{
		createdAt: w.CreatedAt,
		headers:   headersFromWire(w.Headers),
		id:        w.ID,
		code:      w.Code,
		roundtrip: time.Duration(w.RoundtripMs) * time.Millisecond,
		truncated: w.Truncated,
	}
	if len(w.Body) > 0 {
		r.body = NewBody(w.Body)
	}
	return r
}

// Wire returns the wire form of r.
func (r *Response) Wire() entities.ResponseWire {
	return entities.ResponseWire{
		CreatedAt:   r.createdAt,
		Headers:     r.headers.toWire(),
		Body:        r.body.Raw(),
		ID:          r.id,
		Code:        r.code,
		RoundtripMs: r.roundtrip.Milliseconds(),
		Truncated:   r.truncated,
	}
}

// ID returns the host-assigned identifier.
func (r *Response) ID() string { return r.id }

// Code returns the HTTP status code.
func (r *Response) Code() int { return r.code }

// RoundtripTime is how long the host waited for the response.
func (r *Response) RoundtripTime() time.Duration { return r.roundtrip }

func (r *Response) CreatedAt() time.Time { return r.createdAt }

// Headers returns a copy of the response headers.
func (r *Response) Headers() *Headers { return r.headers.Clone() }

// Header returns the values for name, or nil when absent.
func (r *Response) Header(name string) []string { return r.headers.Get(name) }

// Body returns the response body, or nil when there is none.
func (r *Response) Body() *Body { return r.body }

// Truncated reports whether the host cut the body at its size limit.
func (r *Response) Truncated() bool { return r.truncated }

// RequestResponse pairs a sent request with the response it produced.
type RequestResponse struct {
	request  *Request
	response *Response
}

// NewRequestResponse pairs req and resp.
func NewRequestResponse(req *Request, resp *Response) *RequestResponse {
	return &RequestResponse{request: req, response: resp}
}

func (rr *RequestResponse) Request() *Request { return rr.request }

func (rr *RequestResponse) Response() *Response { return rr.response }
