// Package bookmarks runs bookmark operations against the repository: load the
// document, resolve and mutate it, write it back and hand it to git.
package bookmarks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/floccus/internal/apperr"
	"github.com/starford/floccus/internal/gitsync"
	"github.com/starford/floccus/internal/storage"
	"github.com/starford/floccus/internal/xbel"
)

// DefaultFile is the document name Floccus uses inside the repository.
const DefaultFile = "bookmarks.xbel"

// Event kinds passed to the change notifier.
const (
	EventAdded    = "bookmark.added"
	EventRemoved  = "item.removed"
	EventImported = "tree.imported"
	EventCreated  = "file.created"
)

// Notifier is told about every successful mutation.
type Notifier func(kind, id string)

// Service coordinates the document, the repository directory and git.
type Service struct {
	mu     sync.Mutex
	store  storage.Provider
	file   string
	syncer gitsync.Syncer
	minter xbel.IDMinter
	logger *slog.Logger
	notify Notifier
}

// Option configures a Service.
type Option func(*Service)

// WithFile sets the document name relative to the repository root.
func WithFile(name string) Option { return func(s *Service) { s.file = name } }

// WithSyncer sets the git collaborator. The default never pushes.
func WithSyncer(g gitsync.Syncer) Option { return func(s *Service) { s.syncer = g } }

// WithMinter sets the id minter used by Add.
func WithMinter(m xbel.IDMinter) Option { return func(s *Service) { s.minter = m } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithNotifier registers a callback for successful mutations.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notify = n } }

// NewService creates a bookmark service over store.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		file:   DefaultFile,
		syncer: gitsync.Nop{},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// File returns the document name relative to the repository root.
func (s *Service) File() string { return s.file }

// CanPush reports whether the git collaborator has a remote to push to.
func (s *Service) CanPush() bool { return s.syncer.HasRemote() }

// Prepare brings the working copy up to date before an operation.
func (s *Service) Prepare(ctx context.Context) error {
	if err := s.syncer.Prepare(ctx); err != nil {
		return fmt.Errorf("bookmarks: prepare repository: %w", err)
	}
	return nil
}

// Raw returns the document file as stored.
func (s *Service) Raw(_ context.Context) ([]byte, error) {
	data, err := s.store.Read(s.file)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: load %s: %w: %w", s.file, apperr.ErrIO, err)
	}
	return data, nil
}

// Load reads and parses the document.
func (s *Service) Load(ctx context.Context) (*xbel.Document, error) {
	data, err := s.Raw(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := xbel.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: load %s: %w", s.file, err)
	}
	if s.minter != nil {
		doc.UseMinter(s.minter)
	}
	return doc, nil
}

// Create writes an empty document when the repository has none yet.
func (s *Service) Create(ctx context.Context, push bool) error {
	if err := s.checkPush(push); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.store.Exists(s.file)
	if err != nil {
		return fmt.Errorf("bookmarks: create %s: %w: %w", s.file, apperr.ErrIO, err)
	}
	if ok {
		return fmt.Errorf("bookmarks: create %s: %w", s.file, apperr.ErrAlreadyExists)
	}
	if err := s.save(ctx, xbel.New(), push); err != nil {
		return err
	}
	s.logger.Info("document created", slog.String("file", s.file), slog.Bool("pushed", push))
	s.emit(EventCreated, "")
	return nil
}

// Get returns the item at addr. Root has no item of its own.
func (s *Service) Get(ctx context.Context, addr xbel.Address) (xbel.Item, error) {
	if addr.Kind == xbel.AddressRoot {
		return nil, fmt.Errorf("bookmarks: get root: %w", apperr.ErrUnsupported)
	}
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := doc.Resolve(addr)
	if err != nil {
		return nil, err
	}
	return loc.Item(), nil
}

// Find searches the document.
func (s *Service) Find(ctx context.Context, q xbel.Query) ([]xbel.Item, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Find(q), nil
}

// Add inserts a new bookmark and persists the document.
func (s *Service) Add(ctx context.Context, req AddRequest) (*xbel.Bookmark, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("bookmarks: add: %w: %w", apperr.ErrInvalidInput, err)
	}
	if err := s.checkPush(req.Push); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	b, err := doc.Add(req.Under, req.URL, req.Title)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: add under %s: %w", req.Under, err)
	}
	if err := s.save(ctx, doc, req.Push); err != nil {
		return nil, err
	}
	s.logger.Info("bookmark added",
		slog.String("id", b.ID),
		slog.String("under", req.Under.String()),
		slog.Bool("pushed", req.Push))
	s.emit(EventAdded, b.ID)
	return b, nil
}

// Remove deletes the addressed item and its subtree. A dry run resolves and
// reports only: nothing is written or pushed.
func (s *Service) Remove(ctx context.Context, req RemoveRequest) (xbel.Removal, error) {
	if err := s.checkPush(req.Push); err != nil {
		return xbel.Removal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load(ctx)
	if err != nil {
		return xbel.Removal{}, err
	}
	r, err := doc.Remove(req.Item, req.DryRun)
	if err != nil {
		return xbel.Removal{}, fmt.Errorf("bookmarks: remove %s: %w", req.Item, err)
	}
	if req.DryRun {
		s.logger.Info("dry run, nothing removed",
			slog.String("id", r.Item.ItemID()),
			slog.Int("descendants", r.Descendants))
		return r, nil
	}
	if err := s.save(ctx, doc, req.Push); err != nil {
		return xbel.Removal{}, err
	}
	s.logger.Info("item removed",
		slog.String("id", r.Item.ItemID()),
		slog.Int("descendants", r.Descendants),
		slog.Bool("pushed", req.Push))
	s.emit(EventRemoved, r.Item.ItemID())
	return r, nil
}

func (s *Service) checkPush(push bool) error {
	if push && !s.syncer.HasRemote() {
		return fmt.Errorf("bookmarks: %w (configure a repository url or disable push)", apperr.ErrPushWithoutRemote)
	}
	return nil
}

// save writes the document and, only once the write succeeded, publishes it.
func (s *Service) save(ctx context.Context, doc *xbel.Document, push bool) error {
	data, err := xbel.Marshal(doc)
	if err != nil {
		return fmt.Errorf("bookmarks: serialize: %w", err)
	}
	if err := s.store.Write(s.file, data); err != nil {
		return fmt.Errorf("bookmarks: write %s: %w: %w", s.file, apperr.ErrIO, err)
	}
	if !push {
		return nil
	}
	if err := s.syncer.Publish(ctx, s.file); err != nil {
		return fmt.Errorf("bookmarks: publish: %w", err)
	}
	return nil
}

func (s *Service) emit(kind, id string) {
	if s.notify != nil {
		s.notify(kind, id)
	}
}
