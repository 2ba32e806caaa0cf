package xbel

import (
	"fmt"
	"strings"

	"github.com/starford/floccus/internal/apperr"
)

// Location is a resolved position: an index into a sibling list owned by the
// document (the top-level list or some folder's children).
type Location struct {
	Index    int
	Siblings *[]Item
}

// Item returns the item at the location, or nil for an empty root handle.
func (l Location) Item() Item {
	if l.Siblings == nil || l.Index < 0 || l.Index >= len(*l.Siblings) {
		return nil
	}
	return (*l.Siblings)[l.Index]
}

// Resolve maps an address to a location.
//
// Root always resolves to index 0 of the top-level list; it designates the
// container, not an existing item. Id resolution is breadth-first over the
// whole tree and path resolution walks one title per level; in both cases
// the first match wins and duplicates are not reported.
func (d *Document) Resolve(addr Address) (Location, error) {
	switch addr.Kind {
	case AddressRoot:
		return Location{Index: 0, Siblings: &d.Items}, nil
	case AddressID:
		return d.resolveID(addr)
	case AddressPath:
		return d.resolvePath(addr)
	default:
		return Location{}, fmt.Errorf("xbel: unknown address kind %d: %w", addr.Kind, apperr.ErrUnsupported)
	}
}

func (d *Document) resolveID(addr Address) (Location, error) {
	queue := []*[]Item{&d.Items}
	for len(queue) > 0 {
		items := queue[0]
		queue = queue[1:]

		for i, item := range *items {
			id, err := ParseID(item.ItemID())
			if err != nil {
				return Location{}, fmt.Errorf("xbel: resolve %s: %w", addr, err)
			}
			if id == addr.ID {
				return Location{Index: i, Siblings: items}, nil
			}
		}
		for _, item := range *items {
			if f, ok := item.(*Folder); ok {
				queue = append(queue, &f.Items)
			}
		}
	}
	return Location{}, notFound(addr)
}

func (d *Document) resolvePath(addr Address) (Location, error) {
	segments := strings.Split(addr.Path, "/")
	items := &d.Items
	for depth, segment := range segments {
		if segment == "" {
			return Location{}, notFound(addr)
		}
		idx := indexOfTitle(*items, segment)
		if idx < 0 {
			return Location{}, notFound(addr)
		}
		if depth == len(segments)-1 {
			return Location{Index: idx, Siblings: items}, nil
		}
		f, ok := (*items)[idx].(*Folder)
		if !ok {
			return Location{}, fmt.Errorf("xbel: resolve %s: %q is a bookmark: %w", addr, segment, apperr.ErrNotFound)
		}
		items = &f.Items
	}
	return Location{}, notFound(addr)
}

func indexOfTitle(items []Item, title string) int {
	for i, item := range items {
		if item.ItemTitle() == title {
			return i
		}
	}
	return -1
}

func notFound(addr Address) error {
	return fmt.Errorf("xbel: nothing matches %s: %w", addr, apperr.ErrNotFound)
}
