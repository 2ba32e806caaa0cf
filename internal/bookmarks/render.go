package bookmarks

import (
	"fmt"
	"io"
	"strings"

	"github.com/starford/floccus/internal/xbel"
)

const (
	folderMark   = "\U0001F4C1"
	bookmarkMark = "\U0001F517"
)

// RenderTree prints the document as an indented outline: a folder line,
// then its children two spaces deeper; a bookmark line followed by its URL.
func RenderTree(w io.Writer, doc *xbel.Document) error {
	return RenderItems(w, doc.Items)
}

// RenderItems prints the given subtrees in the RenderTree layout.
func RenderItems(w io.Writer, items []xbel.Item) error {
	depth := 0
	it := xbel.NewNestingIterator(items)
	for step, ok := it.Next(); ok; step, ok = it.Next() {
		if step.IsEnd() {
			depth--
			continue
		}
		indent := strings.Repeat("  ", depth)
		var err error
		switch item := step.Item.(type) {
		case *xbel.Folder:
			_, err = fmt.Fprintf(w, "%s[%s %s] %s\n", indent, folderMark, item.ID, item.Title)
			depth++
		case *xbel.Bookmark:
			_, err = fmt.Fprintf(w, "%s[%s %s] %s\n%s- %s\n", indent, bookmarkMark, item.ID, item.Title, indent, item.Href)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Describe returns a one-line summary of an item in the RenderTree style.
func Describe(item xbel.Item) string {
	switch item := item.(type) {
	case *xbel.Folder:
		return fmt.Sprintf("[%s %s] %s", folderMark, item.ID, item.Title)
	case *xbel.Bookmark:
		return fmt.Sprintf("[%s %s] %s - %s", bookmarkMark, item.ID, item.Title, item.Href)
	}
	return ""
}
