package hostfuncs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
)

type allowAll struct{}

func (allowAll) InScope(entities.ScopeTarget) bool { return true }

type hostOnly string

func (h hostOnly) InScope(t entities.ScopeTarget) bool { return t.Host == string(h) }

type fakeStore struct {
	failWith error
	findings []entities.FindingWire
	mu       sync.Mutex
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (s *fakeStore) Create(_ context.Context, f entities.FindingWire) (entities.FindingWire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return entities.FindingWire{}, s.failWith
	}
	f.ID = fmt.Sprintf("finding-%d", len(s.findings)+1)
	f.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.findings = append(s.findings, f)
	return f, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (entities.FindingWire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.findings {
		if f.ID == id {
			return f, nil
		}
	}
	return entities.FindingWire{}, errors.ErrNotFound
}

func (s *fakeStore) List(context.Context) ([]entities.FindingWire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.FindingWire(nil), s.findings...), nil
}

func (s *fakeStore) Close() error { return nil }
