package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"Vigora/internal/api/handlers/player"
	"Vigora/internal/core/feed"
	"Vigora/internal/core/playback"
)

// RegisterPlayerRoutes registers the app-shell websocket bridge on the router
func RegisterPlayerRoutes(r chi.Router, coordinator *playback.Coordinator, store *feed.Store, logger *slog.Logger) {
	handler := player.NewHandler(coordinator, store.Refresh, logger)

	r.Get("/api/playback/ws", handler.HandleWS)
}
