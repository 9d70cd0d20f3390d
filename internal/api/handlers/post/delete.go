package post

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Vigora/internal/api/middleware"
	"Vigora/internal/core/feed"
	"Vigora/internal/origin"
)

// DeleteHandler handles post deletion.
type DeleteHandler struct {
	store  *feed.Store
	origin origin.Client
}

// NewDeleteHandler creates a delete handler.
func NewDeleteHandler(store *feed.Store, originClient origin.Client) *DeleteHandler {
	return &DeleteHandler{store: store, origin: originClient}
}

// HandleDelete handles DELETE /api/posts/{id}
// Ownership is checked before the origin call, and the local record is only
// removed after the origin has accepted the delete.
func (h *DeleteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if postID == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "post id is required")
		return
	}

	viewerHandle := middleware.GetViewerHandle(r)

	// 1. Call-site guard: reject before any network work
	target, err := h.store.Get(postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if target.Sponsored {
		handleServiceError(w, feed.ErrSponsoredPost)
		return
	}
	if target.Author.Handle != viewerHandle {
		handleServiceError(w, feed.ErrNotPostAuthor)
		return
	}

	// 2. Confirm with the origin
	if err := h.origin.DeletePost(r.Context(), postID); err != nil {
		log.Printf("Post delete rejected by origin: %v", err)
		writeError(w, http.StatusBadGateway, "DeleteFailed", "Não foi possível excluir. Tente novamente.")
		return
	}

	// 3. Splice out locally
	if err := h.store.RemovePost(postID, viewerHandle); err != nil && !errors.Is(err, feed.ErrPostNotFound) {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
