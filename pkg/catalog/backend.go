package catalog

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend abstracts the bytes-on-storage layer under the Store: an index
// document plus opaque per-dataset batch blobs. Implementations must make
// WriteIndex atomic.
type Backend interface {
	ReadIndex() ([]byte, error)
	WriteIndex(data []byte) error
	WriteBatch(datasetID, batchID string, data []byte) error
	ReadBatch(datasetID, batchID string) ([]byte, error)
	DeleteDataset(datasetID string) error
}

// FileBackend stores the catalog under a base directory: index.json at the
// root and one subdirectory of batch files per dataset. All writes go
// through a temp file and an atomic rename so readers never observe a
// partial document.
type FileBackend struct {
	baseDir string
}

// NewFileBackend creates the base directory if needed.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory %s: %w", baseDir, err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

func (b *FileBackend) indexPath() string {
	return filepath.Join(b.baseDir, "index.json")
}

// ReadIndex returns nil data without error when no index exists yet.
func (b *FileBackend) ReadIndex() ([]byte, error) {
	data, err := os.ReadFile(b.indexPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog index: %w", err)
	}
	return data, nil
}

// WriteIndex replaces the index atomically.
func (b *FileBackend) WriteIndex(data []byte) error {
	return atomicWrite(b.indexPath(), data)
}

// WriteBatch persists one batch blob for a dataset.
func (b *FileBackend) WriteBatch(datasetID, batchID string, data []byte) error {
	dir := filepath.Join(b.baseDir, datasetID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory %s: %w", dir, err)
	}
	return atomicWrite(filepath.Join(dir, batchID+".rec.sz"), data)
}

// ReadBatch loads one batch blob.
func (b *FileBackend) ReadBatch(datasetID, batchID string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.baseDir, datasetID, batchID+".rec.sz"))
	if err != nil {
		return nil, fmt.Errorf("failed to read batch %s/%s: %w", datasetID, batchID, err)
	}
	return data, nil
}

// DeleteDataset removes a dataset's batch directory.
func (b *FileBackend) DeleteDataset(datasetID string) error {
	if err := os.RemoveAll(filepath.Join(b.baseDir, datasetID)); err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", datasetID, err)
	}
	return nil
}

// atomicWrite writes to a temp file in the target directory and renames it
// over the destination. The temp file is removed on failure.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
