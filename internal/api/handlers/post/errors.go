package post

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Vigora/internal/core/feed"
	"Vigora/internal/core/media"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{
		Error:   errorType,
		Message: message,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// handleServiceError maps feed store errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feed.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "PostNotFound", "Post not found")

	case errors.Is(err, feed.ErrNotPostAuthor):
		writeError(w, http.StatusForbidden, "NotAuthorized", "Only the post author can do that")

	case errors.Is(err, feed.ErrSponsoredPost):
		writeError(w, http.StatusForbidden, "SponsoredPost", "Sponsored posts do not support this action")

	case errors.Is(err, feed.ErrDuplicatePost):
		writeError(w, http.StatusConflict, "DuplicatePost", "A post with this id already exists")

	default:
		// Don't leak internal error details to clients
		log.Printf("Unexpected error in post handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}

// handleMediaError maps media validation errors to HTTP responses
func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrMediaTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "MediaTooLarge", "Attached media exceeds the size limit")

	case errors.Is(err, media.ErrInvalidDataURI),
		errors.Is(err, media.ErrUnsupportedMedia),
		errors.Is(err, media.ErrDecodeFailed):
		writeError(w, http.StatusBadRequest, "InvalidMedia", err.Error())

	default:
		log.Printf("Unexpected media error: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
