package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/floccus/internal/bookmarks"
	"github.com/starford/floccus/internal/index"
)

// NewRouter creates a chi router with all API routes mounted.
// db backs /search and may be nil, in which case /search is not mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *bookmarks.Service, db index.BookmarkIndex, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, db)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Tree and items.
	r.Get("/tree", h.Tree)
	r.Get("/xbel", h.Document)
	r.Get("/items/{id}", h.GetItem)
	r.Delete("/items", h.RemoveItem)
	r.Get("/find", h.Find)

	// Mutations.
	r.Post("/bookmarks", h.AddBookmark)
	r.Post("/import", h.Import)

	// Search.
	if db != nil {
		r.Get("/search", h.Search)
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
