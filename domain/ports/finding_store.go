package ports

import (
	"context"

	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// FindingStore persists findings reported by scripts.
type FindingStore interface {
	// Create saves a new finding and returns it with its id and creation time set.
	Create(ctx context.Context, finding entities.FindingWire) (entities.FindingWire, error)

	// Get returns the finding with the given id.
	Get(ctx context.Context, id string) (entities.FindingWire, error)

	// List returns all findings ordered by creation time.
	List(ctx context.Context) ([]entities.FindingWire, error)

	// Close releases any resources held by the store.
	Close() error
}
