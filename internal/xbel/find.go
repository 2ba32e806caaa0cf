package xbel

import "strings"

// FindKind restricts which item variants a Query matches.
type FindKind int

const (
	FindAll FindKind = iota
	FindFolders
	FindBookmarks
)

// FindField restricts where a Query looks for its text.
type FindField int

const (
	FieldAll FindField = iota
	FieldTitle
	FieldURL
)

// Query is a case-sensitive substring search.
type Query struct {
	Text  string
	Kind  FindKind
	Field FindField
}

// Find returns matching items in depth-first order. Folders have no URL, so
// a URL-only query never matches them.
func (d *Document) Find(q Query) []Item {
	var out []Item
	for item := range d.All() {
		if q.matches(item) {
			out = append(out, item)
		}
	}
	return out
}

func (q Query) matches(item Item) bool {
	var href string
	switch item := item.(type) {
	case *Folder:
		if q.Kind == FindBookmarks {
			return false
		}
	case *Bookmark:
		if q.Kind == FindFolders {
			return false
		}
		href = item.Href
	}

	inTitle := strings.Contains(item.ItemTitle(), q.Text)
	inURL := href != "" && strings.Contains(href, q.Text)
	switch q.Field {
	case FieldTitle:
		return inTitle
	case FieldURL:
		return inURL
	default:
		return inTitle || inURL
	}
}
