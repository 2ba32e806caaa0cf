package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/floccus/internal/apperr"
	"github.com/starford/floccus/internal/models"
)

const checksumKey = "document_checksum"

// SearchResult represents one search hit.
type SearchResult struct {
	models.Entry
	Snippet string `json:"snippet"`
}

// ReplaceAll swaps the mirrored tree for entries, in traversal order, and
// records the checksum of the document they came from. It runs in one
// transaction so readers never see a half-replaced tree.
func (db *DB) ReplaceAll(entries []models.Entry, checksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("index: clear items: %w", err)
	}
	if err := ftsReset(tx); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO items (seq, id, kind, title, href, parent_id, path, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		seq := i + 1
		if _, err := stmt.Exec(seq, e.ID, e.Kind, e.Title, e.Href, e.ParentID, e.Path, e.Position); err != nil {
			return fmt.Errorf("index: insert item %s: %w", e.ID, err)
		}
		if err := ftsInsert(tx, seq, e); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, checksumKey, checksum)
	if err != nil {
		return fmt.Errorf("index: store checksum: %w", err)
	}
	return tx.Commit()
}

// Checksum returns the checksum recorded by the last ReplaceAll, or an empty
// string before the first one.
func (db *DB) Checksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, checksumKey).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// Count returns the number of mirrored items.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// Get returns the first item with id in traversal order.
func (db *DB) Get(id string) (*models.Entry, error) {
	var e models.Entry
	err := db.conn.QueryRow(`
		SELECT id, kind, title, href, parent_id, path, position
		FROM items WHERE id = ? ORDER BY seq LIMIT 1
	`, id).Scan(&e.ID, &e.Kind, &e.Title, &e.Href, &e.ParentID, &e.Path, &e.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: item %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get %s: %w", id, err)
	}
	return &e, nil
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Kind, &r.Title, &r.Href, &r.ParentID, &r.Path, &r.Position, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
