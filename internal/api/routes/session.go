package routes

import (
	"github.com/go-chi/chi/v5"

	"Vigora/internal/api/handlers/session"
	"Vigora/internal/api/middleware"
	"Vigora/internal/core/feed"
)

// RegisterSessionRoutes registers login/logout endpoints on the router
func RegisterSessionRoutes(r chi.Router, store *feed.Store, sessions *middleware.SessionManager) {
	handler := session.NewHandler(store, sessions)

	r.Post("/api/session", handler.HandleLogin)
	r.Delete("/api/session", handler.HandleLogout)
}
