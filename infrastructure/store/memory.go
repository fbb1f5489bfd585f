// Package store provides the persistence backends behind ports.Store: an
// in-memory copy-on-write store and a SQL store that writes every committed
// snapshot through to SQLite or PostgreSQL.
package store

import (
	"context"
	"sync"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// commitFunc persists a snapshot before it is installed. A non-nil error
// aborts the unit of work.
type commitFunc func(ctx context.Context, s *domain.Snapshot) error

// MemoryStore keeps the current snapshot in memory. Writers run against a
// clone under an exclusive lock and install it only when they succeed, so
// installed snapshots are never mutated and readers need no lock beyond
// fetching the current pointer.
type MemoryStore struct {
	driver string
	commit commitFunc

	mu     sync.Mutex // serializes writers
	snapMu sync.RWMutex
	snap   *domain.Snapshot
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreFrom(domain.NewSnapshot())
}

// NewMemoryStoreFrom creates an in-memory store seeded with snap. The store
// takes ownership of snap.
func NewMemoryStoreFrom(snap *domain.Snapshot) *MemoryStore {
	return newMemoryStore("memory", snap.Normalize(), nil)
}

func newMemoryStore(driver string, snap *domain.Snapshot, commit commitFunc) *MemoryStore {
	snap.ResetTouched()
	return &MemoryStore{driver: driver, snap: snap, commit: commit}
}

// Update implements ports.Store.
func (m *MemoryStore) Update(ctx context.Context, fn func(s *domain.Snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.current("Update")
	if err != nil {
		return err
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if m.commit != nil {
		if err := m.commit(ctx, next); err != nil {
			return err
		}
	}
	next.ResetTouched()

	m.snapMu.Lock()
	m.snap = next
	m.snapMu.Unlock()
	return nil
}

// View implements ports.Store. fn sees the snapshot installed when View was
// called, even if writers commit while fn runs.
func (m *MemoryStore) View(ctx context.Context, fn func(s *domain.Snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cur, err := m.current("View")
	if err != nil {
		return err
	}
	return fn(cur)
}

// Close implements ports.Store.
func (m *MemoryStore) Close() error {
	m.snapMu.Lock()
	defer m.snapMu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryStore) current(op string) (*domain.Snapshot, error) {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	if m.closed {
		return nil, ports.NewStoreError(m.driver, op, ports.ErrStoreClosed)
	}
	return m.snap, nil
}

// Compile-time verification that MemoryStore implements ports.Store.
var _ ports.Store = (*MemoryStore)(nil)
