package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

func openSQLite(t *testing.T, path string) *SQLStore {
	t.Helper()
	st, err := OpenSQL(context.Background(), "sqlite", path)
	require.NoError(t, err)
	return st
}

// TestSQLStorePersists verifies that committed snapshots survive a reopen
// and that rolled back units of work are never written.
func TestSQLStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scoresheet.db")

	st := openSQLite(t, path)
	points := 87
	require.NoError(t, st.Update(ctx, func(s *domain.Snapshot) error {
		s.PutGroup(domain.Group{Meta: domain.Meta{ID: "g1", Name: "Main Street"}, Kind: domain.GroupQuartet})
		s.PutScore(domain.Score{Meta: domain.Meta{ID: "s1"}, Category: domain.CategoryMusic, Points: &points})
		return nil
	}))
	err := st.Update(ctx, func(s *domain.Snapshot) error {
		s.PutGroup(domain.Group{Meta: domain.Meta{ID: "g2"}})
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	require.NoError(t, st.Close())

	reopened := openSQLite(t, path)
	defer reopened.Close()
	require.NoError(t, reopened.View(ctx, func(s *domain.Snapshot) error {
		require.Len(t, s.Groups, 1)
		assert.Equal(t, "Main Street", s.Groups["g1"].Name)
		require.NotNil(t, s.Scores["s1"].Points)
		assert.Equal(t, 87, *s.Scores["s1"].Points)
		assert.NotNil(t, s.Judges, "decoded snapshots are normalized")
		return nil
	}))
}

// TestSQLStoreCorruptPayload verifies that an undecodable row is reported
// rather than silently replaced.
func TestSQLStoreCorruptPayload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scoresheet.db")

	st := openSQLite(t, path)
	require.NoError(t, st.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, upsertSnapshot, snapshotID, "{not json", "now")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = OpenSQL(ctx, "sqlite", path)
	assert.ErrorIs(t, err, ports.ErrCorruptSnapshot)
}

// TestOpen verifies driver selection.
func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		driver  string
		dsn     string
		wantErr bool
	}{
		{name: "memory", driver: "memory"},
		{name: "sqlite", driver: "sqlite", dsn: filepath.Join(t.TempDir(), "open.db")},
		{name: "unknown driver", driver: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Open(ctx, tt.driver, tt.dsn)
			if tt.wantErr {
				var storeErr *ports.StoreError
				assert.ErrorAs(t, err, &storeErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, st.Close())
		})
	}
}
