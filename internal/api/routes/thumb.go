package routes

import (
	"github.com/go-chi/chi/v5"

	"Vigora/internal/api/handlers/thumb"
	"Vigora/internal/core/thumbs"
)

// RegisterThumbRoutes registers the thumbnail endpoint on the router
func RegisterThumbRoutes(r chi.Router, service *thumbs.Service) {
	handler := thumb.NewHandler(service)

	r.Get("/api/thumbs", handler.HandleThumbnail)
}
