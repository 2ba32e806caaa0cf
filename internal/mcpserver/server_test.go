package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/floccus/internal/bookmarks"
	"github.com/starford/floccus/internal/index"
	"github.com/starford/floccus/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	dir, store := testutil.TestRepo(t, testutil.BankXBEL)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := index.Sync(db, store, bookmarks.DefaultFile, logger); err != nil {
		t.Fatal(err)
	}

	srv := New(bookmarks.NewService(store, bookmarks.WithLogger(logger)), db, "test")
	return srv, dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so dispatch to the
	// handler functions.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_bookmarks":
		result, err = srv.listBookmarks(ctx, req)
	case "find_bookmarks":
		result, err = srv.findBookmarks(ctx, req)
	case "search_bookmarks":
		result, err = srv.searchBookmarks(ctx, req)
	case "add_bookmark":
		result, err = srv.addBookmark(ctx, req)
	case "remove_bookmark":
		result, err = srv.removeBookmark(ctx, req)
	case "get_address_syntax":
		result, err = srv.getAddressSyntax(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListBookmarks(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_bookmarks", map[string]any{})
	want := "[📁 1] admin\n" +
		"  [📁 2] bank\n" +
		"    [🔗 3] Bank 1 - Best bank in the world\n" +
		"    - https://www.bank1.com/\n" +
		"    [🔗 4] Bank 2 because 2 > 1 !#€\n" +
		"    - https://www.bank2.com\n" +
		"  [🔗 5] My current bank\n" +
		"  - https://www.bank3.com\n"
	if got := resultText(r); got != want {
		t.Errorf("list =\n%s\nwant\n%s", got, want)
	}
}

func TestListBookmarks_Under(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_bookmarks", map[string]any{"under": "admin/bank"})
	text := resultText(r)
	if !strings.HasPrefix(text, "[📁 2] bank\n") || strings.Contains(text, "admin") {
		t.Errorf("list under = %q", text)
	}

	r = callTool(t, srv, "list_bookmarks", map[string]any{"under": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown address")
	}
}

func TestFindBookmarks(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "find_bookmarks", map[string]any{"text": "bank2", "field": "url"})
	if got := resultText(r); got != "bookmark 4: Bank 2 because 2 > 1 !#€ <https://www.bank2.com>\n" {
		t.Errorf("find = %q", got)
	}

	r = callTool(t, srv, "find_bookmarks", map[string]any{"text": "bank", "kind": "folder"})
	if got := resultText(r); got != "folder 2: bank\n" {
		t.Errorf("find folders = %q", got)
	}

	r = callTool(t, srv, "find_bookmarks", map[string]any{"text": "x", "field": "body"})
	if !r.IsError {
		t.Error("expected error for unknown field")
	}
}

func TestSearchBookmarks(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "search_bookmarks", map[string]any{"query": "bank1"})
	if r.IsError || !strings.Contains(resultText(r), `"id": "3"`) {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestAddAndRemoveBookmark(t *testing.T) {
	srv, dir := testServer(t)

	r := callTool(t, srv, "add_bookmark", map[string]any{
		"url":   "https://www.bank4.com",
		"title": "Bank 4",
		"under": "before=5",
	})
	if got := resultText(r); got != "added: 6" {
		t.Fatalf("add = %q", got)
	}

	r = callTool(t, srv, "remove_bookmark", map[string]any{"item": "6", "dry_run": true})
	if got := resultText(r); got != `would remove: 6 "Bank 4" and 0 descendants` {
		t.Errorf("dry run = %q", got)
	}

	r = callTool(t, srv, "remove_bookmark", map[string]any{"item": "admin/bank"})
	if got := resultText(r); got != `removed: 2 "bank" and 2 descendants` {
		t.Errorf("remove = %q", got)
	}

	data, err := os.ReadFile(filepath.Join(dir, bookmarks.DefaultFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "bank4") || strings.Contains(string(data), "bank1") {
		t.Errorf("file =\n%s", data)
	}
}

func TestAddBookmark_Errors(t *testing.T) {
	srv, _ := testServer(t)

	cases := []map[string]any{
		{"title": "x"},
		{"url": "https://x", "title": "x", "under": "append=3"},
		{"url": "https://x", "title": "x", "push": true},
	}
	for _, args := range cases {
		if r := callTool(t, srv, "add_bookmark", args); !r.IsError {
			t.Errorf("add(%v) should fail", args)
		}
	}
}

func TestRemoveRootFails(t *testing.T) {
	srv, _ := testServer(t)
	if r := callTool(t, srv, "remove_bookmark", map[string]any{"item": "root"}); !r.IsError {
		t.Error("removing root should fail")
	}
}

func TestAddressSyntax(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_address_syntax", nil)
	if !strings.Contains(resultText(r), "before=N") {
		t.Error("syntax text missing placements")
	}

	contents, err := srv.readAddressSyntaxResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc := contents[0].(mcp.TextResourceContents); tc.URI != addressSyntaxURI {
		t.Errorf("uri = %q", tc.URI)
	}
}
