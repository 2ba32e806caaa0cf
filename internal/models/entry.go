// Package models defines the flat bookmark rows shared by the index and the
// HTTP API.
package models

// Entry kinds.
const (
	KindFolder   = "folder"
	KindBookmark = "bookmark"
)

// Entry is one item of the bookmark tree without its children.
type Entry struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Href     string `json:"href,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	// Path is the slash-joined titles of the ancestors and the item itself.
	Path     string `json:"path"`
	Position int    `json:"position"`
}
