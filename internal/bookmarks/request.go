package bookmarks

import (
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/floccus/internal/xbel"
)

// AddRequest describes a bookmark to add.
type AddRequest struct {
	URL   string
	Title string
	Under xbel.Address
	Push  bool
}

// Validate validates the request.
func (r AddRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, validation.Length(1, 8192), xmlText),
		validation.Field(&r.Title, validation.Required, xmlText),
	)
}

// xmlText rejects characters the XBEL file could not hold.
var xmlText = validation.By(func(value any) error {
	s, _ := value.(string)
	return xbel.ValidText(s)
})

// RemoveRequest describes an item to remove.
type RemoveRequest struct {
	Item   xbel.Address
	DryRun bool
	Push   bool
}

// ImportRequest describes a Netscape bookmark file to merge into the document.
type ImportRequest struct {
	Source io.Reader
	Under  xbel.Address
	Push   bool
}

// Validate validates the request.
func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Source, validation.NotNil),
	)
}
