package findingstore

import (
	"context"
	"sync"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// MemoryStore keeps findings in process memory. Contents are lost on Close.
type MemoryStore struct {
	byID     map[string]int
	findings []entities.FindingWire
	config   storeConfig
	mu       sync.RWMutex
	closed   bool
}

var _ ports.FindingStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MemoryStore{byID: make(map[string]int), config: cfg}
}

// Create saves finding with a fresh id and creation time.
func (s *MemoryStore) Create(_ context.Context, finding entities.FindingWire) (entities.FindingWire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return entities.FindingWire{}, &errors.StorageError{Operation: "create", Err: ErrClosed}
	}

	finding.ID = s.config.newID()
	finding.CreatedAt = s.config.now()
	if _, exists := s.byID[finding.ID]; exists {
		return entities.FindingWire{}, &errors.StorageError{Operation: "create", Err: errDuplicateID(finding.ID)}
	}

	s.byID[finding.ID] = len(s.findings)
	s.findings = append(s.findings, finding)
	return finding, nil
}

// Get returns the finding with id, or an error wrapping errors.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (entities.FindingWire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return entities.FindingWire{}, &errors.StorageError{Operation: "get", Err: ErrClosed}
	}
	i, ok := s.byID[id]
	if !ok {
		return entities.FindingWire{}, notFound(id)
	}
	return s.findings[i], nil
}

// List returns all findings in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]entities.FindingWire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, &errors.StorageError{Operation: "list", Err: ErrClosed}
	}
	out := make([]entities.FindingWire, len(s.findings))
	copy(out, s.findings)
	return out, nil
}

// Close drops all findings.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.findings = nil
	s.byID = nil
	return nil
}

type errDuplicateID string

func (e errDuplicateID) Error() string {
	return "duplicate finding id " + string(e)
}
