//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/floccus/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			title,
			href,
			path,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReset(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM items_fts`); err != nil {
		return fmt.Errorf("index: clear fts: %w", err)
	}
	return nil
}

func ftsInsert(tx *sql.Tx, seq int, e models.Entry) error {
	_, err := tx.Exec(`INSERT INTO items_fts (rowid, title, href, path) VALUES (?, ?, ?, ?)`,
		seq, e.Title, e.Href, e.Path)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search and returns matching items with
// a highlighted title snippet.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT i.id, i.kind, i.title, i.href, i.parent_id, i.path, i.position,
		       snippet(items_fts, 0, '<b>', '</b>', '...', 16)
		FROM items_fts
		JOIN items i ON i.seq = items_fts.rowid
		WHERE items_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
