package api

import (
	"github.com/starford/floccus/internal/index"
	"github.com/starford/floccus/internal/models"
	"github.com/starford/floccus/internal/xbel"
)

// AddBookmarkRequest is the request body for adding a bookmark.
type AddBookmarkRequest struct {
	URL   string `json:"url" example:"https://www.bank1.com/" validate:"required"`
	Title string `json:"title" example:"Bank 1" validate:"required"`
	// Under is an address: "root", "<id>", "before=<id>", "after=<id>",
	// "append=<id>", "prepend=<id>" or a slash-separated title path.
	Under string `json:"under,omitempty" example:"admin/bank"`
	Push  bool   `json:"push,omitempty"`
}

// Item is a folder or bookmark in API responses.
type Item struct {
	ID       string `json:"id" example:"3" validate:"required"`
	Kind     string `json:"kind" example:"bookmark" validate:"required"`
	Title    string `json:"title" example:"Bank 1"`
	Href     string `json:"href,omitempty" example:"https://www.bank1.com/"`
	Children []Item `json:"children,omitempty"`
}

// TreeResponse is the whole document.
type TreeResponse struct {
	Version   string `json:"version" example:"1.0" validate:"required"`
	HighestID uint64 `json:"highest_id" example:"5"`
	Items     []Item `json:"items" validate:"required"`
}

// ItemsResponse wraps a flat list of items.
type ItemsResponse struct {
	Items []Item `json:"items" validate:"required"`
}

// RemovalResponse reports a removal, or what a dry run would remove.
type RemovalResponse struct {
	Item        Item `json:"item" validate:"required"`
	Index       int  `json:"index"`
	Descendants int  `json:"descendants"`
	DryRun      bool `json:"dry_run"`
}

// ImportResponse reports an import.
type ImportResponse struct {
	Items   int    `json:"items" example:"12"`
	FirstID string `json:"first_id,omitempty" example:"6"`
	LastID  string `json:"last_id,omitempty" example:"17"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// toItem converts an item; deep includes folder children.
func toItem(it xbel.Item, deep bool) Item {
	switch it := it.(type) {
	case *xbel.Folder:
		out := Item{ID: it.ID, Kind: models.KindFolder, Title: it.Title}
		if deep {
			out.Children = toItems(it.Items, true)
		}
		return out
	case *xbel.Bookmark:
		return Item{ID: it.ID, Kind: models.KindBookmark, Title: it.Title, Href: it.Href}
	}
	return Item{}
}

func toItems(items []xbel.Item, deep bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, toItem(it, deep))
	}
	return out
}
