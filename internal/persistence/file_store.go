package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore keeps each key in its own file under a directory.
type FileStore struct {
	fs        afero.Fs
	directory string
	extension string
}

// NewFileStore returns a store writing "<directory>/<key><extension>" files through fs.
func NewFileStore(fs afero.Fs, directory, extension string) *FileStore {
	return &FileStore{
		fs:        fs,
		directory: directory,
		extension: extension,
	}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.directory, key+s.extension)
}

func (s *FileStore) Read(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, s.path(key))
	}
	if err != nil {
		return nil, fmt.Errorf("afero.ReadFile(%s) > %w", s.path(key), err)
	}
	return data, nil
}

// Write replaces the file through a temporary file and a rename, so a reader never sees a partial snapshot.
func (s *FileStore) Write(_ context.Context, key string, data []byte) error {
	if err := s.fs.MkdirAll(s.directory, 0755); err != nil {
		return fmt.Errorf("fs.MkdirAll(%s) > %w", s.directory, err)
	}

	tmp, err := afero.TempFile(s.fs, s.directory, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("afero.TempFile() > %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("tmp.Write() > %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("tmp.Close() > %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path(key)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("fs.Rename(%s) > %w", s.path(key), err)
	}
	return nil
}
