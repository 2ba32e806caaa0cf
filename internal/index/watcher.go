package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/floccus/internal/storage"
)

// Watcher event kinds.
const (
	EventUpdated = "updated"
	EventRemoved = "removed"
)

const settleDelay = 150 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, file string)

// Watch starts an fsnotify watcher on the directory holding file and
// re-syncs the mirror whenever the document is written or replaced, until
// ctx is cancelled. Bursts of events (an atomic replace, a git pull) are
// coalesced into one sync. cb, if non-nil, is called after each sync that
// changed the mirror.
func Watch(ctx context.Context, db *DB, store storage.Provider, root, file string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(filepath.Join(root, file))
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", target))

	var settle *time.Timer
	var settleCh <-chan time.Time

	schedule := func() {
		if settle == nil {
			settle = time.NewTimer(settleDelay)
			settleCh = settle.C
		} else {
			settle.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			changed, syncErr := Sync(db, store, file, logger)
			if syncErr != nil {
				logger.Warn("watcher: sync failed", slog.String("file", file), slog.String("error", syncErr.Error()))
				continue
			}
			if changed {
				logger.Debug("watcher: indexed", slog.String("file", file))
				if cb != nil {
					cb(EventUpdated, file)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if storage.IsTemp(ev.Name) || filepath.Clean(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				schedule()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// The mirror keeps the last good tree; a replacement
				// arrives as a Create on the same name.
				logger.Warn("watcher: document moved away", slog.String("file", file))
				if cb != nil {
					cb(EventRemoved, file)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
