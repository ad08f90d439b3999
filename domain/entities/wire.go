package entities

import "time"

// Host function names. These form the ABI between scripts and the host and
// must remain stable.
const (
	FuncConsoleLog     = "console_log"
	FuncRequestsSend   = "requests_send"
	FuncRequestsScope  = "requests_in_scope"
	FuncFindingsCreate = "findings_create"
)

// HeaderField is one header name with its ordered values.
type HeaderField struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

// RequestWire is the JSON wire format for a request snapshot.
type RequestWire struct {
	CreatedAt time.Time     `json:"created_at"`
	Headers   []HeaderField `json:"headers,omitempty"`
	Body      []byte        `json:"body,omitempty"`
	ID        string        `json:"id"`
	Host      string        `json:"host"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Query     string        `json:"query,omitempty"`
	Port      int           `json:"port"`
	TLS       bool          `json:"tls"`
}

// ResponseWire is the JSON wire format for a response snapshot.
type ResponseWire struct {
	CreatedAt   time.Time     `json:"created_at"`
	Headers     []HeaderField `json:"headers,omitempty"`
	Body        []byte        `json:"body,omitempty"`
	ID          string        `json:"id"`
	Code        int           `json:"code"`
	RoundtripMs int64         `json:"roundtrip_ms,omitempty"`
	Truncated   bool          `json:"truncated,omitempty"` // body cut at the host's size limit
}

// RequestSpecWire is the JSON wire format for a structured pending request.
type RequestSpecWire struct {
	Headers []HeaderField `json:"headers,omitempty"`
	Body    []byte        `json:"body,omitempty"`
	Host    string        `json:"host"`
	Method  string        `json:"method"`
	Path    string        `json:"path"`
	Query   string        `json:"query,omitempty"`
	Port    int           `json:"port"`
	TLS     bool          `json:"tls"`
}

// RawSpecWire is the JSON wire format for a raw pending request: a connection
// target plus the verbatim bytes to write.
type RawSpecWire struct {
	Raw  []byte `json:"raw,omitempty"`
	Host string `json:"host"`
	Port int    `json:"port"`
	TLS  bool   `json:"tls"`
}

// SendRequest is the payload of requests_send. Exactly one of Spec or Raw is set.
type SendRequest struct {
	Spec *RequestSpecWire `json:"spec,omitempty"`
	Raw  *RawSpecWire     `json:"raw,omitempty"`
}

// SendResponse is the result of requests_send.
type SendResponse struct {
	Request  *RequestWire  `json:"request,omitempty"`
	Response *ResponseWire `json:"response,omitempty"`
	Error    *ErrorDetail  `json:"error,omitempty"`
}

// ScopeTarget is the subset of a request that scope rules are evaluated against.
type ScopeTarget struct {
	Host  string `json:"host"`
	Path  string `json:"path,omitempty"`
	Query string `json:"query,omitempty"`
	Port  int    `json:"port"`
	TLS   bool   `json:"tls"`
}

// ScopeCheckRequest is the payload of requests_in_scope.
type ScopeCheckRequest struct {
	Target ScopeTarget `json:"target"`
}

// ScopeCheckResponse is the result of requests_in_scope.
type ScopeCheckResponse struct {
	Error   *ErrorDetail `json:"error,omitempty"`
	InScope bool         `json:"in_scope"`
}

// FindingWire is the JSON wire format for a saved finding.
type FindingWire struct {
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Reporter    string    `json:"reporter" yaml:"reporter"`
	RequestID   string    `json:"request_id" yaml:"request_id"`
	Target      string    `json:"target,omitempty" yaml:"target,omitempty"`
}

// CreateFindingRequest is the payload of findings_create.
type CreateFindingRequest struct {
	Request     RequestWire `json:"request"`
	Title       string      `json:"title" validate:"required,max=512"`
	Description string      `json:"description,omitempty"`
	Reporter    string      `json:"reporter" validate:"required,max=128"`
}

// CreateFindingResponse is the result of findings_create.
type CreateFindingResponse struct {
	Finding *FindingWire `json:"finding,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// LogMessageWire is the JSON wire format for a console message from script to host.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
}

// LogAttrWire represents a single slog attribute for wire transfer.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "bool", "float64", "time", "duration", "error", "json", "any"
	Value string `json:"value"` // String representation of the value
}

// LogAck is the result of console_log.
type LogAck struct {
	Accepted bool `json:"accepted"`
}

// Script kinds accepted by RunInput.
const (
	ScriptKindPassive = "passive"
	ScriptKindConvert = "convert"
)

// ContextWire carries the host's deadline and run id into a script.
type ContextWire struct {
	Deadline  *time.Time `json:"deadline,omitempty"`
	RunID     string     `json:"run_id,omitempty"`
	TimeoutMs int64      `json:"timeout_ms,omitempty"`
	Canceled  bool       `json:"canceled,omitempty"`
}

// RunInput is the document a host hands to a script's run entry point.
type RunInput struct {
	Context  ContextWire   `json:"context"`
	Request  *RequestWire  `json:"request,omitempty"`
	Response *ResponseWire `json:"response,omitempty"`
	Data     []byte        `json:"data,omitempty"`
	Kind     string        `json:"kind"`
}

// RunOutput is what a script's run entry point returns to the host.
type RunOutput struct {
	Error   *ErrorDetail `json:"error,omitempty"`
	Data    []byte       `json:"data,omitempty"`
	HasData bool         `json:"has_data,omitempty"`
}
