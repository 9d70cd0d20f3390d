package routes

import (
	"github.com/go-chi/chi/v5"

	"Vigora/internal/api/handlers/timeline"
	"Vigora/internal/api/middleware"
	"Vigora/internal/core/feed"
)

// RegisterFeedRoutes registers the feed view endpoints on the router
func RegisterFeedRoutes(r chi.Router, store *feed.Store, sessions *middleware.SessionManager) {
	handler := timeline.NewHandler(store)

	r.With(sessions.RequireViewer).Get("/api/feed", handler.HandleGet)
	r.With(sessions.RequireViewer).Post("/api/feed/refresh", handler.HandleRefresh)
}
