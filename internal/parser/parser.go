// Package parser reads browser bookmark exports in the Netscape bookmark
// file format (bookmarks.html).
package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrEmpty is returned when the input holds no folder and no link.
var ErrEmpty = errors.New("parser: no bookmarks found")

// Node is a folder (Folder true, Children in document order) or a link.
type Node struct {
	Title    string
	Href     string
	Folder   bool
	Children []*Node
}

// Count returns the number of nodes in the forest, folders included.
func Count(nodes []*Node) int {
	n := 0
	for _, node := range nodes {
		n++
		if node.Folder {
			n += Count(node.Children)
		}
	}
	return n
}

// ParseNetscape parses a Netscape bookmark file. Folders come from <H3>
// headers, and their content is the <DL> list that follows; links come from
// <A HREF>. Anchors without an href are dropped.
func ParseNetscape(r io.Reader) ([]*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}

	root := &Node{Folder: true}
	stack := []*Node{root}
	var pending *Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		top := stack[len(stack)-1]
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h3":
				pending = &Node{Title: text(n), Folder: true}
				top.Children = append(top.Children, pending)
				return
			case "a":
				if href := attr(n, "href"); href != "" {
					top.Children = append(top.Children, &Node{Title: text(n), Href: href})
				}
				return
			case "dl":
				// A list belongs to the folder whose header precedes it; a
				// list without a header keeps the current folder.
				next := top
				if pending != nil {
					next, pending = pending, nil
				}
				stack = append(stack, next)
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				stack = stack[:len(stack)-1]
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(root.Children) == 0 {
		return nil, ErrEmpty
	}
	return root.Children, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}
