package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// snapshotID is the primary key of the single snapshot row.
const snapshotID = 1

const schema = `
CREATE TABLE IF NOT EXISTS scoresheet_snapshot (
    id INTEGER PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

const upsertSnapshot = `
INSERT INTO scoresheet_snapshot (id, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

const selectSnapshot = `SELECT payload FROM scoresheet_snapshot WHERE id = $1`

// SQLStore is a MemoryStore whose commits are written through to a SQL
// database before they become visible. Reads never touch the database.
// The whole object graph is stored as one JSON document, so every unit of
// work maps onto a single row write.
type SQLStore struct {
	*MemoryStore
	db     *sql.DB
	driver string
}

// driverNames maps configuration driver names to database/sql driver names.
var driverNames = map[string]string{
	"sqlite":   "sqlite",
	"postgres": "postgres",
}

// Open returns the store selected by driver. The memory driver ignores dsn.
func Open(ctx context.Context, driver, dsn string) (ports.Store, error) {
	if driver == "memory" {
		return NewMemoryStore(), nil
	}
	return OpenSQL(ctx, driver, dsn)
}

// OpenSQL connects to the database, creates the schema when missing and
// loads the stored snapshot.
// It returns a ports.StoreError if the database is unreachable or the
// stored payload cannot be decoded.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	name, ok := driverNames[driver]
	if !ok {
		return nil, ports.NewStoreError(driver, "Open", fmt.Errorf("unsupported driver %q", driver))
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, ports.NewStoreError(driver, "Open", err)
	}
	if driver == "sqlite" {
		// A single connection keeps writes ordered for the embedded database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, ports.NewStoreError(driver, "Ping", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, ports.NewStoreError(driver, "CreateSchema", err)
	}

	s := &SQLStore{db: db, driver: driver}
	snap, err := s.load(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.MemoryStore = newMemoryStore(driver, snap, s.save)
	return s, nil
}

func (s *SQLStore) load(ctx context.Context) (*domain.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, selectSnapshot, snapshotID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewSnapshot(), nil
	}
	if err != nil {
		return nil, ports.NewStoreError(s.driver, "Load", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, ports.NewStoreError(s.driver, "Load", fmt.Errorf("%w: %w", ports.ErrCorruptSnapshot, err))
	}
	return snap.Normalize(), nil
}

func (s *SQLStore) save(ctx context.Context, snap *domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return ports.NewStoreError(s.driver, "Save", err)
	}
	updated := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, upsertSnapshot, snapshotID, string(payload), updated); err != nil {
		return ports.NewStoreError(s.driver, "Save", err)
	}
	return nil
}

// Close closes the store and the database handle.
func (s *SQLStore) Close() error {
	if err := s.MemoryStore.Close(); err != nil {
		return err
	}
	return s.db.Close()
}

// Compile-time verification that SQLStore implements ports.Store.
var _ ports.Store = (*SQLStore)(nil)
