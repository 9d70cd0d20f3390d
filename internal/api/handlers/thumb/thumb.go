package thumb

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Vigora/internal/core/thumbs"
)

// Handler serves processed feed-grid thumbnails.
type Handler struct {
	service *thumbs.Service
}

// NewHandler creates a thumbnail handler.
func NewHandler(service *thumbs.Service) *Handler {
	return &Handler{service: service}
}

// HandleThumbnail handles GET /api/thumbs?url=…&preset=…
// Responses are immutable for a given url+preset pair, so clients may cache
// aggressively.
func (h *Handler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	sourceURL := r.URL.Query().Get("url")
	preset := r.URL.Query().Get("preset")
	if preset == "" {
		preset = "grid"
	}

	data, err := h.service.Thumbnail(r.Context(), sourceURL, preset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if _, err := w.Write(data); err != nil {
		log.Printf("Failed to write thumbnail response: %v", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorType, Message: message}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, thumbs.ErrInvalidSource), errors.Is(err, thumbs.ErrInvalidPreset):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	case errors.Is(err, thumbs.ErrSourceTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "SourceTooLarge", "Source media exceeds the size limit")

	case errors.Is(err, thumbs.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, "FetchFailed", "Could not fetch source media")

	case errors.Is(err, thumbs.ErrProcessingFailed):
		writeError(w, http.StatusUnprocessableEntity, "ProcessingFailed", "Source media could not be processed")

	default:
		log.Printf("Unexpected error in thumbnail handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
