// Package sdktest provides an in-memory host and helpers for testing scripts
// written against the SDK.
package sdktest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

var _ ports.HostInvoker = (*MockHost)(nil)

// MockHost is a HostInvoker answering host functions from memory.
// Each Func field overrides the default behavior of one host function.
// An error returned by a Func is returned from Invoke unchanged, which lets
// tests check that rejections propagate with their identity intact.
type MockHost struct {
	SendFunc          func(ctx context.Context, req entities.SendRequest) (entities.SendResponse, error)
	InScopeFunc       func(target entities.ScopeTarget) bool
	CreateFindingFunc func(ctx context.Context, req entities.CreateFindingRequest) (entities.CreateFindingResponse, error)

	// Now supplies timestamps; defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	calls    []string
	logs     []entities.LogMessageWire
	sent     []entities.SendRequest
	findings []entities.FindingWire
	seq      int
}

// NewMockHost returns a MockHost with default behavior: sends succeed with a
// 200 response echoing the request, every target is in scope and findings are
// saved.
func NewMockHost() *MockHost {
	return &MockHost{}
}

// Invoke implements ports.HostInvoker.
func (m *MockHost) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()

	switch name {
	case entities.FuncConsoleLog:
		var msg entities.LogMessageWire
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.logs = append(m.logs, msg)
		m.mu.Unlock()
		return json.Marshal(entities.LogAck{Accepted: true})

	case entities.FuncRequestsSend:
		var req entities.SendRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sent = append(m.sent, req)
		m.mu.Unlock()
		if m.SendFunc != nil {
			resp, err := m.SendFunc(ctx, req)
			if err != nil {
				return nil, err
			}
			return json.Marshal(resp)
		}
		return json.Marshal(m.defaultSend(req))

	case entities.FuncRequestsScope:
		var req entities.ScopeCheckRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		inScope := true
		if m.InScopeFunc != nil {
			inScope = m.InScopeFunc(req.Target)
		}
		return json.Marshal(entities.ScopeCheckResponse{InScope: inScope})

	case entities.FuncFindingsCreate:
		var req entities.CreateFindingRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		var resp entities.CreateFindingResponse
		if m.CreateFindingFunc != nil {
			var err error
			if resp, err = m.CreateFindingFunc(ctx, req); err != nil {
				return nil, err
			}
		} else {
			resp = m.defaultCreate(req)
		}
		if resp.Finding != nil {
			m.mu.Lock()
			m.findings = append(m.findings, *resp.Finding)
			m.mu.Unlock()
		}
		return json.Marshal(resp)
	}

	return json.Marshal(entities.HostFault{
		Error:   "NOT_FOUND",
		Message: fmt.Sprintf("unknown host function: %s", name),
		Code:    404,
	})
}

func (m *MockHost) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockHost) nextID(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *MockHost) defaultSend(req entities.SendRequest) entities.SendResponse {
	sentAt := m.now()
	wire := entities.RequestWire{CreatedAt: sentAt, ID: m.nextID("req")}
	switch {
	case req.Spec != nil:
		wire.Headers = req.Spec.Headers
		wire.Body = req.Spec.Body
		wire.Host = req.Spec.Host
		wire.Method = req.Spec.Method
		wire.Path = req.Spec.Path
		wire.Query = req.Spec.Query
		wire.Port = req.Spec.Port
		wire.TLS = req.Spec.TLS
	case req.Raw != nil:
		wire.Host = req.Raw.Host
		wire.Port = req.Raw.Port
		wire.TLS = req.Raw.TLS
		wire.Body = req.Raw.Raw
	}

	return entities.SendResponse{
		Request: &wire,
		Response: &entities.ResponseWire{
			CreatedAt: sentAt,
			Headers:   []entities.HeaderField{{Name: "Content-Type", Values: []string{"text/plain"}}},
			Body:      []byte("ok"),
			ID:        m.nextID("resp"),
			Code:      200,
		},
	}
}

func (m *MockHost) defaultCreate(req entities.CreateFindingRequest) entities.CreateFindingResponse {
	return entities.CreateFindingResponse{
		Finding: &entities.FindingWire{
			CreatedAt:   m.now(),
			ID:          m.nextID("finding"),
			Title:       req.Title,
			Description: req.Description,
			Reporter:    req.Reporter,
			RequestID:   req.Request.ID,
			Target:      req.Request.Host,
		},
	}
}

// Calls returns the names of all host functions invoked so far.
func (m *MockHost) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Logs returns every console message received.
func (m *MockHost) Logs() []entities.LogMessageWire {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.LogMessageWire(nil), m.logs...)
}

// Sent returns every send payload received.
func (m *MockHost) Sent() []entities.SendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.SendRequest(nil), m.sent...)
}

// Findings returns every finding saved.
func (m *MockHost) Findings() []entities.FindingWire {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.FindingWire(nil), m.findings...)
}
