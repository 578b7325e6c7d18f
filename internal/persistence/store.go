// Package persistence snapshots the review state into a blob store and restores it on start.
package persistence

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by a BlobStore when nothing was stored under the key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

//go:generate mockgen -source=store.go -destination=../mocks/persistence/mock_blob_store.go -package=mock_persistence

// BlobStore keeps opaque blobs under string keys. A write replaces the whole blob.
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}
