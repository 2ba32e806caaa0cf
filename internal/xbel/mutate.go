package xbel

import (
	"fmt"
	"slices"

	"github.com/starford/floccus/internal/apperr"
)

// Insert places items, in order, at addr:
//
//   - Root: appended to the top-level list.
//   - Id: Before/After the target among its siblings, or as the first/last
//     children of the target, which must then be a folder.
//   - Path: appended to the children of the target, which must be a folder.
//
// Nil items are rejected with apperr.ErrUnsupported, and text XML cannot
// carry with apperr.ErrInvalidInput. The tree is left untouched when an
// error is returned.
func (d *Document) Insert(addr Address, items ...Item) error {
	if err := checkItems(items); err != nil {
		return err
	}
	loc, err := d.Resolve(addr)
	if err != nil {
		return err
	}

	switch addr.Kind {
	case AddressRoot:
		*loc.Siblings = append(*loc.Siblings, items...)
		return nil

	case AddressID:
		switch addr.Placement {
		case Before:
			*loc.Siblings = slices.Insert(*loc.Siblings, loc.Index, items...)
			return nil
		case After:
			*loc.Siblings = slices.Insert(*loc.Siblings, loc.Index+1, items...)
			return nil
		}
		f, err := folderAt(loc, addr)
		if err != nil {
			return err
		}
		if addr.Placement == InFolderPrepend {
			f.Items = slices.Insert(f.Items, 0, items...)
		} else {
			f.Items = append(f.Items, items...)
		}
		return nil

	case AddressPath:
		f, err := folderAt(loc, addr)
		if err != nil {
			return err
		}
		f.Items = append(f.Items, items...)
		return nil
	}
	return fmt.Errorf("xbel: insert at %s: %w", addr, apperr.ErrUnsupported)
}

// Add mints a new bookmark id and inserts the bookmark at addr. The id is
// computed when Add is called, from the tree as it is at that moment.
func (d *Document) Add(addr Address, href, title string) (*Bookmark, error) {
	if _, err := d.Resolve(addr); err != nil {
		return nil, err
	}
	id, err := d.mint()
	if err != nil {
		return nil, err
	}
	b := &Bookmark{ID: id, Href: href, Title: title}
	if err := d.Insert(addr, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Removal describes an item taken out of the tree (or that would be, for a
// dry run).
type Removal struct {
	Item        Item
	Index       int
	Descendants int
	DryRun      bool
}

// Remove detaches the item at addr from its sibling list; a folder goes with
// its whole subtree. Root cannot be removed. With dryRun set the item is
// only resolved and reported.
func (d *Document) Remove(addr Address, dryRun bool) (Removal, error) {
	if addr.Kind == AddressRoot {
		return Removal{}, fmt.Errorf("xbel: remove %s: %w", addr, apperr.ErrUnsupported)
	}
	loc, err := d.Resolve(addr)
	if err != nil {
		return Removal{}, err
	}

	item := loc.Item()
	r := Removal{Item: item, Index: loc.Index, DryRun: dryRun}
	if f, ok := item.(*Folder); ok {
		it := NewIterator(f.Items)
		for _, ok := it.Next(); ok; _, ok = it.Next() {
			r.Descendants++
		}
	}
	if !dryRun {
		*loc.Siblings = slices.Delete(*loc.Siblings, loc.Index, loc.Index+1)
	}
	return r, nil
}

func folderAt(loc Location, addr Address) (*Folder, error) {
	switch item := loc.Item().(type) {
	case *Folder:
		return item, nil
	case *Bookmark:
		return nil, fmt.Errorf("xbel: item %s found at %s: %w", item.ID, addr, apperr.ErrNotAFolder)
	default:
		return nil, notFound(addr)
	}
}
