package index

import "github.com/starford/floccus/internal/models"

// BookmarkIndex defines the read and replace operations on the mirror.
// Consumers should depend on this interface rather than the concrete *DB.
type BookmarkIndex interface {
	ReplaceAll(entries []models.Entry, checksum string) error
	Checksum() (string, error)
	Count() (int, error)
	Get(id string) (*models.Entry, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies BookmarkIndex at compile time.
var _ BookmarkIndex = (*DB)(nil)
