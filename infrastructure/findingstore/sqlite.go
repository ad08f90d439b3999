package findingstore

import (
	"context"
	"database/sql"
	_ "embed"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps findings in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	config storeConfig
	closed atomic.Bool
}

var _ ports.FindingStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path and applies the schema.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if path == "" {
		return nil, &errors.ValidationError{Field: "findings.path", Err: stdErrors.New("sqlite store needs a database path")}
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &errors.StorageError{Operation: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &errors.StorageError{Operation: "open", Err: err}
	}
	// SQLite has a single writer; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, &errors.StorageError{Operation: "open", Err: err}
	}

	return &SQLiteStore{db: db, config: cfg}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Create saves finding with a fresh id and creation time.
func (s *SQLiteStore) Create(ctx context.Context, finding entities.FindingWire) (entities.FindingWire, error) {
	if s.closed.Load() {
		return entities.FindingWire{}, &errors.StorageError{Operation: "create", Err: ErrClosed}
	}

	finding.ID = s.config.newID()
	finding.CreatedAt = s.config.now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO findings (id, title, description, reporter, request_id, target, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		finding.ID, finding.Title, finding.Description, finding.Reporter,
		finding.RequestID, finding.Target, finding.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return entities.FindingWire{}, &errors.StorageError{Operation: "create", Err: err}
	}
	return finding, nil
}

// Get returns the finding with id, or an error wrapping errors.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (entities.FindingWire, error) {
	if s.closed.Load() {
		return entities.FindingWire{}, &errors.StorageError{Operation: "get", Err: ErrClosed}
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, reporter, request_id, target, created_at
		 FROM findings WHERE id = ?`, id)
	f, err := scanFinding(row)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return entities.FindingWire{}, notFound(id)
	}
	if err != nil {
		return entities.FindingWire{}, &errors.StorageError{Operation: "get", Err: err}
	}
	return f, nil
}

// List returns all findings, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]entities.FindingWire, error) {
	if s.closed.Load() {
		return nil, &errors.StorageError{Operation: "list", Err: ErrClosed}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, reporter, request_id, target, created_at
		 FROM findings ORDER BY created_at, rowid`)
	if err != nil {
		return nil, &errors.StorageError{Operation: "list", Err: err}
	}
	defer rows.Close()

	findings := []entities.FindingWire{}
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, &errors.StorageError{Operation: "list", Err: err}
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.StorageError{Operation: "list", Err: err}
	}
	return findings, nil
}

// Close closes the database. Calling it more than once is a no-op.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFinding(r rowScanner) (entities.FindingWire, error) {
	var (
		f         entities.FindingWire
		createdAt string
	)
	if err := r.Scan(&f.ID, &f.Title, &f.Description, &f.Reporter, &f.RequestID, &f.Target, &createdAt); err != nil {
		return entities.FindingWire{}, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return entities.FindingWire{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	f.CreatedAt = t
	return f, nil
}
