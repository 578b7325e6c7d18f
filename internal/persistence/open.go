package persistence

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/database"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStore returns the blob store for the configured backend. The closer releases the
// database of the SQL backends and does nothing for the others.
func OpenStore(ctx context.Context, storage config.StorageConfig, dbConfig config.DatabaseConfig) (BlobStore, io.Closer, error) {
	switch storage.Backend {
	case config.BackendFile, "":
		return NewFileStore(afero.NewOsFs(), storage.Directory, "."+storage.Format), nopCloser{}, nil
	case config.BackendDiskv:
		return NewDiskvStore(storage.Directory), nopCloser{}, nil
	case config.BackendSQLite:
		db, err := database.OpenSQLite(storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("database.OpenSQLite() > %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.EnsureSchema() > %w", err)
		}
		return NewSQLStore(db), db, nil
	case config.BackendMySQL:
		db, err := database.Open(dbConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		if err := database.Ping(ctx, db, dbConfig.PingAttempts); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.Ping() > %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.EnsureSchema() > %w", err)
		}
		return NewSQLStore(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", storage.Backend)
	}
}
