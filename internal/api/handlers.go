package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/floccus/internal/bookmarks"
	"github.com/starford/floccus/internal/checksum"
	"github.com/starford/floccus/internal/index"
	"github.com/starford/floccus/internal/xbel"
)

// Handler holds API route handlers.
type Handler struct {
	svc *bookmarks.Service
	db  index.BookmarkIndex
}

// NewHandler creates a new Handler.
func NewHandler(svc *bookmarks.Service, db index.BookmarkIndex) *Handler {
	return &Handler{svc: svc, db: db}
}

// address parses an address parameter. Empty means root.
func address(s string) xbel.Address {
	if s == "" {
		return xbel.Root()
	}
	return xbel.ParseAddress(s)
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// Tree handles GET /tree.
//
//	@Summary		Get the whole bookmark tree
//	@Tags			tree
//	@Produce		json,plain
//	@Param			format	query		string	false	"Output format"	Enums(json, text)
//	@Success		200		{object}	TreeResponse
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Load(r.Context())
	if err != nil {
		writeError(w, "load tree", err)
		return
	}
	highest, err := doc.HighestID()
	if err != nil {
		writeError(w, "load tree", err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		var buf bytes.Buffer
		if err := bookmarks.RenderTree(&buf, doc); err != nil {
			writeError(w, "render tree", err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
		return
	}

	writeJSON(w, http.StatusOK, TreeResponse{
		Version:   doc.Version,
		HighestID: highest,
		Items:     toItems(doc.Items, true),
	})
}

// Document handles GET /xbel. It serves the stored file with a strong ETag.
//
//	@Summary		Download the XBEL file
//	@Tags			tree
//	@Produce		xml
//	@Param			If-None-Match	header	string	false	"ETag from a previous download"
//	@Success		200
//	@Success		304
//	@Security		BearerAuth
//	@Router			/xbel [get]
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Raw(r.Context())
	if err != nil {
		writeError(w, "read document", err)
		return
	}
	etag := checksum.ETag(data)
	w.Header().Set("ETag", etag)
	if checksum.MatchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}

// GetItem handles GET /items/{id}.
//
//	@Summary		Get a folder or bookmark by id
//	@Tags			tree
//	@Produce		json
//	@Param			id	path		int	true	"Item id"
//	@Success		200	{object}	Item
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("id must be a non-negative integer"))
		return
	}
	item, err := h.svc.Get(r.Context(), xbel.ByID(id, xbel.InFolderAppend))
	if err != nil {
		writeError(w, "get item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItem(item, true))
}

// Find handles GET /find.
//
//	@Summary		Find items by substring
//	@Tags			tree
//	@Produce		json
//	@Param			q		query		string	true	"Case-sensitive substring"
//	@Param			field	query		string	false	"Where to look"	Enums(all, title, url)
//	@Param			kind	query		string	false	"Item kind"		Enums(all, folder, bookmark)
//	@Success		200		{object}	ItemsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/find [get]
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := xbel.Query{Text: q.Get("q")}
	if query.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	switch q.Get("field") {
	case "", "all":
	case "title":
		query.Field = xbel.FieldTitle
	case "url":
		query.Field = xbel.FieldURL
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("field must be all, title or url"))
		return
	}
	switch q.Get("kind") {
	case "", "all":
	case "folder":
		query.Kind = xbel.FindFolders
	case "bookmark":
		query.Kind = xbel.FindBookmarks
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("kind must be all, folder or bookmark"))
		return
	}

	items, err := h.svc.Find(r.Context(), query)
	if err != nil {
		writeError(w, "find", err)
		return
	}
	writeJSON(w, http.StatusOK, ItemsResponse{Items: toItems(items, false)})
}

// Search handles GET /search.
//
//	@Summary		Full-text search over the index
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results (default 20)"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	results, err := h.db.Search(q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// AddBookmark handles POST /bookmarks.
//
//	@Summary		Add a bookmark
//	@Tags			bookmarks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddBookmarkRequest	true	"Bookmark to add"
//	@Success		201		{object}	Item
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		412		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/bookmarks [post]
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	b, err := h.svc.Add(r.Context(), bookmarks.AddRequest{
		URL:   req.URL,
		Title: req.Title,
		Under: address(req.Under),
		Push:  req.Push,
	})
	if err != nil {
		writeError(w, "add bookmark", err)
		return
	}
	writeJSON(w, http.StatusCreated, toItem(b, false))
}

// Import handles POST /import. The body is a Netscape bookmark file.
//
//	@Summary		Import a Netscape bookmark file
//	@Tags			bookmarks
//	@Accept			html
//	@Produce		json
//	@Param			under	query		string	false	"Destination address (default root)"
//	@Param			push	query		bool	false	"Publish to the remote"
//	@Success		201		{object}	ImportResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	res, err := h.svc.Import(r.Context(), bookmarks.ImportRequest{
		Source: r.Body,
		Under:  address(r.URL.Query().Get("under")),
		Push:   boolParam(r, "push"),
	})
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusCreated, ImportResponse{Items: res.Items, FirstID: res.FirstID, LastID: res.LastID})
}

// RemoveItem handles DELETE /items.
//
//	@Summary		Remove an item and its descendants
//	@Tags			bookmarks
//	@Produce		json
//	@Param			address	query		string	true	"Item address (id or title path)"
//	@Param			dry_run	query		bool	false	"Report without removing"
//	@Param			push	query		bool	false	"Publish to the remote"
//	@Success		200		{object}	RemovalResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items [delete]
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("address")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("address is required"))
		return
	}
	rm, err := h.svc.Remove(r.Context(), bookmarks.RemoveRequest{
		Item:   xbel.ParseAddress(raw),
		DryRun: boolParam(r, "dry_run"),
		Push:   boolParam(r, "push"),
	})
	if err != nil {
		writeError(w, "remove item", err)
		return
	}
	writeJSON(w, http.StatusOK, RemovalResponse{
		Item:        toItem(rm.Item, false),
		Index:       rm.Index,
		Descendants: rm.Descendants,
		DryRun:      rm.DryRun,
	})
}
