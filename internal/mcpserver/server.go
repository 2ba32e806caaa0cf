// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes floccus bookmark tools for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/floccus/internal/bookmarks"
	"github.com/starford/floccus/internal/index"
	"github.com/starford/floccus/internal/xbel"
)

const addressSyntaxURI = "floccus://address-syntax"

// Server wraps the MCP server with bookmark tools.
type Server struct {
	mcp *server.MCPServer
	svc *bookmarks.Service
	db  index.BookmarkIndex
}

// New creates a new MCP server with all tools registered. search_bookmarks
// is only registered when db is non-nil.
func New(svc *bookmarks.Service, db index.BookmarkIndex, version string) *Server {
	s := &Server{svc: svc, db: db}

	s.mcp = server.NewMCPServer(
		"Floccus",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_bookmarks",
		mcp.WithDescription("Print the bookmark tree, or the subtree at an address, with item ids."),
		mcp.WithString("under", mcp.Description("Optional address of a folder to list (default: whole tree)")),
	), s.listBookmarks)

	s.mcp.AddTool(mcp.NewTool("find_bookmarks",
		mcp.WithDescription("Find folders and bookmarks whose title or URL contains a case-sensitive substring."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Substring to look for")),
		mcp.WithString("field", mcp.Description("Where to look"), mcp.Enum("all", "title", "url")),
		mcp.WithString("kind", mcp.Description("Which items to return"), mcp.Enum("all", "folder", "bookmark")),
	), s.findBookmarks)

	if db != nil {
		s.mcp.AddTool(mcp.NewTool("search_bookmarks",
			mcp.WithDescription("Full-text search through bookmark titles, URLs and folder paths."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		), s.searchBookmarks)
	}

	s.mcp.AddTool(mcp.NewTool("add_bookmark",
		mcp.WithDescription("Add a bookmark. The destination is an address; read the syntax first via "+
			"the get_address_syntax tool or the "+addressSyntaxURI+" resource."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Bookmark URL")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Bookmark title")),
		mcp.WithString("under", mcp.Description("Destination address (default: root)")),
		mcp.WithBoolean("push", mcp.Description("Commit and push the file to the git remote")),
	), s.addBookmark)

	s.mcp.AddTool(mcp.NewTool("remove_bookmark",
		mcp.WithDescription("Remove a folder (with its contents) or a bookmark."),
		mcp.WithString("item", mcp.Required(), mcp.Description("Address of the item: an id or a title path")),
		mcp.WithBoolean("dry_run", mcp.Description("Report what would be removed without changing anything")),
		mcp.WithBoolean("push", mcp.Description("Commit and push the file to the git remote")),
	), s.removeBookmark)

	s.mcp.AddTool(mcp.NewTool("get_address_syntax",
		mcp.WithDescription("Returns the address syntax used by add_bookmark, remove_bookmark and list_bookmarks."),
	), s.getAddressSyntax)

	s.mcp.AddResource(
		mcp.NewResource(addressSyntaxURI, "Address Syntax",
			mcp.WithResourceDescription("How folders and bookmarks are addressed."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readAddressSyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func addressArg(req mcp.CallToolRequest, name string) xbel.Address {
	v := req.GetString(name, "")
	if v == "" {
		return xbel.Root()
	}
	return xbel.ParseAddress(v)
}

func (s *Server) listBookmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	under := addressArg(req, "under")

	var items []xbel.Item
	if under.Kind == xbel.AddressRoot {
		doc, err := s.svc.Load(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		items = doc.Items
	} else {
		item, err := s.svc.Get(ctx, under)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		items = []xbel.Item{item}
	}

	if len(items) == 0 {
		return mcp.NewToolResultText("no bookmarks"), nil
	}
	var buf bytes.Buffer
	if err := bookmarks.RenderItems(&buf, items); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) findBookmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q := xbel.Query{Text: text}
	switch f := req.GetString("field", "all"); f {
	case "all":
	case "title":
		q.Field = xbel.FieldTitle
	case "url":
		q.Field = xbel.FieldURL
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown field: %s", f)), nil
	}
	switch k := req.GetString("kind", "all"); k {
	case "all":
	case "folder":
		q.Kind = xbel.FindFolders
	case "bookmark":
		q.Kind = xbel.FindBookmarks
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown kind: %s", k)), nil
	}

	items, err := s.svc.Find(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	var buf bytes.Buffer
	for _, it := range items {
		switch it := it.(type) {
		case *xbel.Folder:
			fmt.Fprintf(&buf, "folder %s: %s\n", it.ID, it.Title)
		case *xbel.Bookmark:
			fmt.Fprintf(&buf, "bookmark %s: %s <%s>\n", it.ID, it.Title, it.Href)
		}
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) searchBookmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := s.svc.Add(ctx, bookmarks.AddRequest{
		URL:   url,
		Title: title,
		Under: addressArg(req, "under"),
		Push:  req.GetBool("push", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s", b.ID)), nil
}

func (s *Server) removeBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item, err := req.RequireString("item")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rm, err := s.svc.Remove(ctx, bookmarks.RemoveRequest{
		Item:   xbel.ParseAddress(item),
		DryRun: req.GetBool("dry_run", false),
		Push:   req.GetBool("push", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verb := "removed"
	if rm.DryRun {
		verb = "would remove"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s %q and %d descendants",
		verb, rm.Item.ItemID(), rm.Item.ItemTitle(), rm.Descendants)), nil
}

func (s *Server) getAddressSyntax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AddressSyntax), nil
}

func (s *Server) readAddressSyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      addressSyntaxURI,
			MIMEType: "text/markdown",
			Text:     AddressSyntax,
		},
	}, nil
}
