// Package findingstore persists findings reported by scripts.
package findingstore

import (
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// Store drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = stdErrors.New("findings store closed")

type storeConfig struct {
	now   func() time.Time
	newID func() string
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Option configures a store.
type Option func(*storeConfig)

// WithClock sets the source of creation times.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator sets the source of finding ids (default: random UUIDs).
func WithIDGenerator(fn func() string) Option {
	return func(c *storeConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Open returns the store for driver. path is ignored by the memory driver.
func Open(driver, path string, opts ...Option) (ports.FindingStore, error) {
	switch driver {
	case DriverSQLite:
		return NewSQLiteStore(path, opts...)
	case DriverMemory, "":
		return NewMemoryStore(opts...), nil
	default:
		return nil, &errors.ValidationError{Field: "findings.driver", Err: fmt.Errorf("unknown driver %q", driver)}
	}
}

func notFound(id string) error {
	return fmt.Errorf("finding %q: %w", id, errors.ErrNotFound)
}
