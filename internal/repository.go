package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/floccus/internal/bookmarks"
	"github.com/starford/floccus/internal/gitsync"
	"github.com/starford/floccus/internal/index"
	"github.com/starford/floccus/internal/storage"
)

// Repository is an opened working copy and the service over its bookmark file.
type Repository struct {
	Store   *storage.FS
	Service *bookmarks.Service
}

// OpenRepository brings the working copy up to date, cloning it first when
// it is missing, and builds the bookmark service over it.
func OpenRepository(ctx context.Context, cfg RepositoryConfig, logger *slog.Logger, opts ...bookmarks.Option) (*Repository, error) {
	dir, err := filepath.Abs(cfg.Dir())
	if err != nil {
		return nil, fmt.Errorf("resolve repository dir: %w", err)
	}

	syncer := gitsync.New(dir, cfg.URL,
		gitsync.WithRemote(cfg.Remote),
		gitsync.WithBranch(cfg.Branch),
		gitsync.WithLogger(logger),
	)
	if err := syncer.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("prepare repository: %w", err)
	}

	store, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	base := []bookmarks.Option{
		bookmarks.WithFile(cfg.File),
		bookmarks.WithSyncer(syncer),
		bookmarks.WithLogger(logger),
	}
	return &Repository{
		Store:   store,
		Service: bookmarks.NewService(store, append(base, opts...)...),
	}, nil
}

// OpenIndex opens the SQLite mirror, creating its directory if needed.
func OpenIndex(cfg SQLiteConfig) (*index.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := index.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	return db, nil
}
