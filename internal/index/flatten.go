package index

import (
	"github.com/starford/floccus/internal/models"
	"github.com/starford/floccus/internal/xbel"
)

type frame struct {
	id       string
	path     string
	children int
}

// Flatten lists every item of doc in depth-first order with its parent id,
// title path and position among its siblings.
func Flatten(doc *xbel.Document) []models.Entry {
	var out []models.Entry
	stack := []*frame{{}}
	it := doc.Nesting()
	for step, ok := it.Next(); ok; step, ok = it.Next() {
		if step.IsEnd() {
			stack = stack[:len(stack)-1]
			continue
		}
		parent := stack[len(stack)-1]
		title := step.Item.ItemTitle()
		path := title
		if len(stack) > 1 {
			path = parent.path + "/" + title
		}
		e := models.Entry{
			ID:       step.Item.ItemID(),
			Title:    title,
			ParentID: parent.id,
			Path:     path,
			Position: parent.children,
		}
		parent.children++

		switch item := step.Item.(type) {
		case *xbel.Folder:
			e.Kind = models.KindFolder
			stack = append(stack, &frame{id: item.ID, path: path})
		case *xbel.Bookmark:
			e.Kind = models.KindBookmark
			e.Href = item.Href
		}
		out = append(out, e)
	}
	return out
}
