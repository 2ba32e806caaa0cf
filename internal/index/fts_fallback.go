//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/floccus/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the items table.
	return nil
}

func ftsReset(_ *sql.Tx) error { return nil }

func ftsInsert(_ *sql.Tx, _ int, _ models.Entry) error { return nil }

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
// Matching is case-insensitive for ASCII letters.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, kind, title, href, parent_id, path, position, substr(path, 1, 200)
		FROM items
		WHERE title LIKE ? OR href LIKE ? OR path LIKE ?
		ORDER BY seq
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
