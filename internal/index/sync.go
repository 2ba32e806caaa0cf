package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/floccus/internal/checksum"
	"github.com/starford/floccus/internal/storage"
	"github.com/starford/floccus/internal/xbel"
)

// Sync brings the mirror up to date with the document at file. It reports
// whether the mirror changed; an unchanged checksum skips parsing entirely.
func Sync(db *DB, store storage.Provider, file string, logger *slog.Logger) (bool, error) {
	data, err := store.Read(file)
	if err != nil {
		return false, err
	}
	cs := checksum.Sum(data)

	stored, err := db.Checksum()
	if err != nil {
		return false, err
	}
	if stored == cs {
		logger.Debug("sync: unchanged", slog.String("file", file))
		return false, nil
	}

	doc, err := xbel.Unmarshal(data)
	if err != nil {
		return false, fmt.Errorf("index: sync %s: %w", file, err)
	}
	entries := Flatten(doc)
	if err := db.ReplaceAll(entries, cs); err != nil {
		return false, err
	}
	logger.Debug("sync: indexed", slog.String("file", file), slog.Int("items", len(entries)))
	return true, nil
}
