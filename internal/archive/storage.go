// Package archive stores analysis snapshots in blob storage so teams can
// keep a history of runs per script tree.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// StorageClient abstracts blob storage for snapshot archives. Snapshots
// are grouped by the slug of the scan root they were produced from.
type StorageClient interface {
	PutSnapshot(ctx context.Context, rootSlug, snapshotID string, data []byte) error
	GetSnapshot(ctx context.Context, rootSlug, snapshotID string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(rootSlug, id string) string {
	return filepath.Join(s.BaseDir, rootSlug, "snapshots", id+".json")
}

// PutSnapshot stores a snapshot blob.
func (s *LocalStorage) PutSnapshot(ctx context.Context, rootSlug, snapshotID string, data []byte) error {
	path := s.path(rootSlug, snapshotID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GetSnapshot retrieves a snapshot blob.
func (s *LocalStorage) GetSnapshot(ctx context.Context, rootSlug, snapshotID string) ([]byte, error) {
	return os.ReadFile(s.path(rootSlug, snapshotID))
}
