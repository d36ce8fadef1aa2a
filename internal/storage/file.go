package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prasenjit/swagger-hub/internal/models"
)

// FileStorage implements Storage interface with file-based persistence
type FileStorage struct {
	mu       sync.Mutex
	basePath string
	memory   *MemoryStorage
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(basePath string) (*FileStorage, error) {
	dir := filepath.Join(basePath, "snapshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	fs := &FileStorage{
		basePath: basePath,
		memory:   NewMemoryStorage(),
	}

	// Load existing data
	if err := fs.loadAll(); err != nil {
		return nil, err
	}

	return fs, nil
}

// loadAll loads all snapshots from disk, skipping unreadable files
func (f *FileStorage) loadAll() error {
	dir := filepath.Join(f.basePath, "snapshots")
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		var s models.Snapshot
		if err := json.Unmarshal(data, &s); err != nil || s.Key == "" {
			continue
		}

		f.memory.snapshots[s.Key] = &s
	}

	return nil
}

// snapshotPath names snapshot files by key hash since keys are URLs
func (f *FileStorage) snapshotPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(f.basePath, "snapshots", hex.EncodeToString(sum[:16])+".json")
}

// SaveSnapshot stores s in memory and on disk
func (f *FileStorage) SaveSnapshot(s *models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.SaveSnapshot(s); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(f.snapshotPath(s.Key), data, 0644)
}

// GetSnapshot retrieves a snapshot by key
func (f *FileStorage) GetSnapshot(key string) (*models.Snapshot, error) {
	return f.memory.GetSnapshot(key)
}

// GetAllSnapshots retrieves all snapshots
func (f *FileStorage) GetAllSnapshots() ([]*models.Snapshot, error) {
	return f.memory.GetAllSnapshots()
}

// DeleteSnapshot deletes a snapshot from memory and disk
func (f *FileStorage) DeleteSnapshot(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.DeleteSnapshot(key); err != nil {
		return err
	}

	if err := os.Remove(f.snapshotPath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close closes the storage
func (f *FileStorage) Close() error {
	return nil
}
