package bookmarks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/floccus/internal/apperr"
	"github.com/starford/floccus/internal/parser"
	"github.com/starford/floccus/internal/xbel"
)

// ImportResult reports what Import added.
type ImportResult struct {
	// Items is the number of folders and bookmarks created.
	Items int
	// FirstID and LastID bound the ids minted, in traversal order.
	FirstID string
	LastID  string
}

// Import converts a Netscape bookmark file into XBEL items and inserts them,
// in file order, at req.Under. Every created item gets a distinct id above
// the current highest one.
func (s *Service) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	if err := req.Validate(); err != nil {
		return ImportResult{}, fmt.Errorf("bookmarks: import: %w: %w", apperr.ErrInvalidInput, err)
	}
	if err := s.checkPush(req.Push); err != nil {
		return ImportResult{}, err
	}
	nodes, err := parser.ParseNetscape(req.Source)
	if err != nil {
		return ImportResult{}, fmt.Errorf("bookmarks: import: %w: %w", apperr.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	// Resolve before minting so a bad address fails fast.
	if _, err := doc.Resolve(req.Under); err != nil {
		return ImportResult{}, fmt.Errorf("bookmarks: import under %s: %w", req.Under, err)
	}

	conv := converter{doc: doc, minter: &xbel.Reservation{}}
	items, err := conv.items(nodes)
	if err != nil {
		return ImportResult{}, err
	}
	if err := doc.Insert(req.Under, items...); err != nil {
		return ImportResult{}, fmt.Errorf("bookmarks: import under %s: %w", req.Under, err)
	}
	if err := s.save(ctx, doc, req.Push); err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Items: conv.count, FirstID: conv.first, LastID: conv.last}
	s.logger.Info("bookmarks imported",
		slog.Int("items", res.Items),
		slog.String("under", req.Under.String()),
		slog.Bool("pushed", req.Push))
	s.emit(EventImported, res.FirstID)
	return res, nil
}

type converter struct {
	doc    *xbel.Document
	minter xbel.IDMinter

	count       int
	first, last string
}

func (c *converter) items(nodes []*parser.Node) ([]xbel.Item, error) {
	out := make([]xbel.Item, 0, len(nodes))
	for _, n := range nodes {
		id, err := c.minter.NextID(c.doc)
		if err != nil {
			return nil, fmt.Errorf("bookmarks: mint id: %w", err)
		}
		c.count++
		if c.first == "" {
			c.first = id
		}
		c.last = id

		if !n.Folder {
			out = append(out, &xbel.Bookmark{ID: id, Href: n.Href, Title: n.Title})
			continue
		}
		children, err := c.items(n.Children)
		if err != nil {
			return nil, err
		}
		out = append(out, &xbel.Folder{ID: id, Title: n.Title, Items: children})
	}
	return out, nil
}
