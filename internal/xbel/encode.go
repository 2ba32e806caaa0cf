package xbel

import (
	"bytes"
	"strconv"
	"strings"
)

// Header is the prolog and DOCTYPE Floccus writes and checks for, byte for byte.
const Header = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE xbel PUBLIC "+//IDN python.org//DTD XML Bookmark Exchange Language 1.0//EN//XML" "http://pyxml.sourceforge.net/topics/dtds/xbel.dtd">
`

const (
	rootStart = `<xbel version="` + Version + `">` + "\n"
	rootEnd   = "\n</xbel>"
	indent    = "  "
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
	"\r", "&#xD;",
)

// Attribute values are whitespace-normalized by readers, so tab and newline
// are written as character references too.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
	"\r", "&#xD;",
	"\n", "&#xA;",
	"\t", "&#x9;",
)

// HighestIDComment returns the metadata comment Floccus parses textually to
// learn the highest id in the file.
func HighestIDComment(highest uint64) string {
	return "<!--- highestId :" + strconv.FormatUint(highest, 10) + ": for Floccus bookmark sync browser extension -->"
}

// Marshal renders d in the layout Floccus reads: fixed prolog, the highestId
// comment recomputed from the tree, then each item with two spaces of
// indentation per nesting level. Text XML cannot carry is rejected with
// apperr.ErrInvalidInput.
func Marshal(d *Document) ([]byte, error) {
	if err := checkItems(d.Items); err != nil {
		return nil, err
	}
	highest, err := d.HighestID()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteString(rootStart)
	buf.WriteString(HighestIDComment(highest))
	buf.WriteString("\n\n")

	e := encoder{buf: &buf}
	for _, item := range d.Items {
		e.item(item)
	}
	buf.WriteString(rootEnd)
	return buf.Bytes(), nil
}

// encoder tracks indentation the way a streaming pretty-printer does: a tag
// starts on a fresh line unless it directly follows text or the comment block.
type encoder struct {
	buf       *bytes.Buffer
	depth     int
	lineBreak bool
}

func (e *encoder) item(item Item) {
	switch item := item.(type) {
	case *Folder:
		e.open("folder", "id", item.ID)
		e.title(item.Title)
		for _, child := range item.Items {
			e.item(child)
		}
		e.close("folder")
	case *Bookmark:
		e.open("bookmark", "href", item.Href, "id", item.ID)
		e.title(item.Title)
		e.close("bookmark")
	}
}

func (e *encoder) title(text string) {
	e.open("title")
	e.buf.WriteString(textEscaper.Replace(text))
	e.lineBreak = false
	e.close("title")
}

func (e *encoder) open(name string, attrs ...string) {
	e.newline()
	e.buf.WriteByte('<')
	e.buf.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		e.buf.WriteByte(' ')
		e.buf.WriteString(attrs[i])
		e.buf.WriteString(`="`)
		e.buf.WriteString(attrEscaper.Replace(attrs[i+1]))
		e.buf.WriteByte('"')
	}
	e.buf.WriteByte('>')
	e.depth++
	e.lineBreak = true
}

func (e *encoder) close(name string) {
	e.depth--
	e.newline()
	e.buf.WriteString("</")
	e.buf.WriteString(name)
	e.buf.WriteByte('>')
	e.lineBreak = true
}

func (e *encoder) newline() {
	if !e.lineBreak {
		return
	}
	e.buf.WriteByte('\n')
	for range e.depth {
		e.buf.WriteString(indent)
	}
}
