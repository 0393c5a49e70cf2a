package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStore is the collaborator owning uploaded files on disk. The
// import pipeline uses it for the guaranteed post-job cleanup.
type FileStore interface {
	Save(name string, src io.Reader) (string, error)
	Exists(path string) bool
	Remove(path string) error
}

// DiskStore stores uploads under a base directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes src to a new file under the store directory and returns
// its full path.
func (s *DiskStore) Save(name string, src io.Reader) (string, error) {
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	return path, nil
}

// Exists reports whether path is present in the store.
func (s *DiskStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes path. Removing an already-deleted file is not an
// error, which keeps terminal-state cleanup idempotent.
func (s *DiskStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
