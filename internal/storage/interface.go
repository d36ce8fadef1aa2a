package storage

import (
	"errors"

	"github.com/prasenjit/swagger-hub/internal/models"
)

// ErrNotFound is returned when no snapshot exists for a key
var ErrNotFound = errors.New("snapshot not found")

// Storage defines the interface for document snapshot persistence
type Storage interface {
	SaveSnapshot(s *models.Snapshot) error
	GetSnapshot(key string) (*models.Snapshot, error)
	GetAllSnapshots() ([]*models.Snapshot, error)
	DeleteSnapshot(key string) error

	// Utility
	Close() error
}
