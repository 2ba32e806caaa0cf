package xbel

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/starford/floccus/internal/apperr"
)

// Unmarshal parses an XBEL document. Folder and bookmark order is kept;
// comments and elements outside the managed schema (desc, info, separator,
// ...) are dropped.
func Unmarshal(data []byte) (*Document, error) {
	var root xbelElement
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, apperr.ErrMalformedID) {
			return nil, fmt.Errorf("xbel: decode: %w", err)
		}
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("xbel: decode: %w: %w", apperr.ErrFormat, err)
	}
	if root.XMLName.Local != "xbel" {
		return nil, fmt.Errorf("xbel: root element is <%s>: %w", root.XMLName.Local, apperr.ErrFormat)
	}
	version := root.Version
	if version == "" {
		version = Version
	}
	return &Document{Version: version, Items: root.Items}, nil
}

type xbelElement struct {
	XMLName xml.Name
	Version string
	Items   []Item
}

func (x *xbelElement) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	x.XMLName = start.Name
	x.Version = attr(start, "version")
	items, _, err := decodeChildren(d)
	x.Items = items
	return err
}

type folderElement struct {
	Folder
}

func (f *folderElement) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	f.ID = attr(start, "id")
	if _, err := ParseID(f.ID); err != nil {
		return err
	}
	items, title, err := decodeChildren(d)
	f.Items = items
	f.Title = title
	return err
}

type bookmarkElement struct {
	Href  string `xml:"href,attr"`
	ID    string `xml:"id,attr"`
	Title string `xml:"title"`
}

// decodeChildren consumes tokens up to the end of the current element,
// collecting folders and bookmarks in document order plus the text of a
// direct <title> child.
func decodeChildren(d *xml.Decoder) ([]Item, string, error) {
	var (
		items []Item
		title string
	)
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "folder":
				var f folderElement
				if err := d.DecodeElement(&f, &t); err != nil {
					return nil, "", err
				}
				items = append(items, &f.Folder)
			case "bookmark":
				var b bookmarkElement
				if err := d.DecodeElement(&b, &t); err != nil {
					return nil, "", err
				}
				if _, err := ParseID(b.ID); err != nil {
					return nil, "", err
				}
				items = append(items, &Bookmark{ID: b.ID, Href: b.Href, Title: b.Title})
			case "title":
				if err := d.DecodeElement(&title, &t); err != nil {
					return nil, "", err
				}
			default:
				if err := d.Skip(); err != nil {
					return nil, "", err
				}
			}
		case xml.EndElement:
			return items, title, nil
		}
	}
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
