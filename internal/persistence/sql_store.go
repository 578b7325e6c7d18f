package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps blobs in the snapshots table. The statements work on both MySQL and SQLite.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db:  db,
		now: time.Now,
	}
}

func (s *SQLStore) Read(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, "SELECT data FROM snapshots WHERE storage_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(snapshot) > %w", err)
	}
	return data, nil
}

func (s *SQLStore) Write(ctx context.Context, key string, data []byte) error {
	if _, err := s.db.ExecContext(ctx,
		"REPLACE INTO snapshots (storage_key, data, updated_at) VALUES (?, ?, ?)",
		key, data, s.now().UTC()); err != nil {
		return fmt.Errorf("db.ExecContext(replace snapshot) > %w", err)
	}
	return nil
}
