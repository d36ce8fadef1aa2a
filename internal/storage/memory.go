package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/prasenjit/swagger-hub/internal/models"
)

// MemoryStorage implements Storage interface with in-memory storage
type MemoryStorage struct {
	mu        sync.RWMutex
	snapshots map[string]*models.Snapshot
}

// NewMemoryStorage creates a new in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		snapshots: make(map[string]*models.Snapshot),
	}
}

// SaveSnapshot stores s, replacing any snapshot with the same key
func (m *MemoryStorage) SaveSnapshot(s *models.Snapshot) error {
	if s == nil || s.Key == "" {
		return fmt.Errorf("snapshot key must be specified")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[s.Key] = s
	return nil
}

// GetSnapshot retrieves a snapshot by key
func (m *MemoryStorage) GetSnapshot(key string) (*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.snapshots[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return s, nil
}

// GetAllSnapshots retrieves all snapshots ordered by document index
func (m *MemoryStorage) GetAllSnapshots() ([]*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := make([]*models.Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		snapshots = append(snapshots, s)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].Index != snapshots[j].Index {
			return snapshots[i].Index < snapshots[j].Index
		}
		return snapshots[i].Key < snapshots[j].Key
	})

	return snapshots, nil
}

// DeleteSnapshot deletes a snapshot
func (m *MemoryStorage) DeleteSnapshot(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.snapshots[key]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	delete(m.snapshots, key)
	return nil
}

// Close closes the storage
func (m *MemoryStorage) Close() error {
	return nil
}
