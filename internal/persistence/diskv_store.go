package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvStore keeps blobs in a diskv directory with a small read cache.
type DiskvStore struct {
	d *diskv.Diskv
}

func NewDiskvStore(basePath string) *DiskvStore {
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024, // 1MB
	})}
}

func (s *DiskvStore) Read(_ context.Context, key string) ([]byte, error) {
	data, err := s.d.Read(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("diskv.Read(%s) > %w", key, err)
	}
	return data, nil
}

func (s *DiskvStore) Write(_ context.Context, key string, data []byte) error {
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("diskv.Write(%s) > %w", key, err)
	}
	return nil
}
