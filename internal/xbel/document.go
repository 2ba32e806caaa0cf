// Package xbel implements the in-memory model of a Floccus XBEL bookmark file:
// the Bookmark/Folder tree, address resolution, structural mutation, traversal,
// and the exact on-disk serialization Floccus expects.
package xbel

import (
	"fmt"
	"strconv"

	"github.com/starford/floccus/internal/apperr"
)

// Version is the only XBEL version written by Marshal.
const Version = "1.0"

// Item is either a *Bookmark or a *Folder. The set is closed; use a type switch.
type Item interface {
	ItemID() string
	ItemTitle() string
	isItem()
}

// Bookmark is a titled URL.
type Bookmark struct {
	ID    string
	Href  string
	Title string
}

func (b *Bookmark) ItemID() string    { return b.ID }
func (b *Bookmark) ItemTitle() string { return b.Title }
func (*Bookmark) isItem()             {}

// Folder owns an ordered list of children. Order is insertion order and is
// significant both on disk and for before/after placement.
type Folder struct {
	ID    string
	Title string
	Items []Item
}

func (f *Folder) ItemID() string    { return f.ID }
func (f *Folder) ItemTitle() string { return f.Title }
func (*Folder) isItem()             {}

// Document is the aggregate root: a version and the top-level items.
type Document struct {
	Version string
	Items   []Item

	minter IDMinter
}

// New returns an empty document.
func New(items ...Item) *Document {
	return &Document{Version: Version, Items: items}
}

// ParseID decodes an item id.
func ParseID(id string) (uint64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperr.ErrMalformedID, id)
	}
	return n, nil
}

// HighestID returns the largest id in the tree, or 0 when it is empty.
// It is recomputed by a full traversal on every call.
func (d *Document) HighestID() (uint64, error) {
	var highest uint64
	it := d.Iter()
	for item, ok := it.Next(); ok; item, ok = it.Next() {
		n, err := ParseID(item.ItemID())
		if err != nil {
			return 0, err
		}
		highest = max(highest, n)
	}
	return highest, nil
}

// Len returns the number of items in the tree, folders included.
func (d *Document) Len() int {
	n := 0
	it := d.Iter()
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		n++
	}
	return n
}

// NewBookmark builds a bookmark whose id is the current highest id plus one.
// The id is not reserved: calling it twice without inserting the first
// result mints the same id.
func (d *Document) NewBookmark(href, title string) (*Bookmark, error) {
	id, err := HighestPlusOne{}.NextID(d)
	if err != nil {
		return nil, err
	}
	return &Bookmark{ID: id, Href: href, Title: title}, nil
}
