package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultjoin/internal/joinservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *joinservice.Service, authEnabled bool, token string, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes/*", h.GetNote)

	// Strategies and indexes.
	r.Get("/strategies", h.ListStrategies)
	r.Get("/index/{strategy}", h.Index)
	r.Get("/index/{strategy}/duplicates", h.Duplicates)

	// Joins.
	r.Post("/joins/{strategy}", h.Join)
	r.Post("/joins/{strategy}/batch", h.JoinBatch)

	// Journal.
	r.Get("/journal", h.Journal)

	// Join events stream.
	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
