package post

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"Vigora/internal/api/middleware"
	"Vigora/internal/core/feed"
)

// LikeNotifier is the best-effort side channel that tells the origin about a
// like delta. Kept behind an interface so the durable outbox (or a future
// direct notifier) can be swapped without touching the optimistic path.
type LikeNotifier interface {
	NotifyLike(ctx context.Context, postID, username string, delta int) error
}

// LikeHandler handles the like toggle.
type LikeHandler struct {
	store    *feed.Store
	notifier LikeNotifier
}

// NewLikeHandler creates a like handler.
func NewLikeHandler(store *feed.Store, notifier LikeNotifier) *LikeHandler {
	return &LikeHandler{store: store, notifier: notifier}
}

// HandleLike handles POST /api/posts/{id}/like
// Mutate-then-notify: the local flag and counter flip immediately; the origin
// notification is queued afterwards and its failure is logged only, never
// rolled back.
func (h *LikeHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if postID == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "post id is required")
		return
	}

	viewerHandle := middleware.GetViewerHandle(r)

	delta, err := h.store.ToggleLike(postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	username := strings.TrimPrefix(viewerHandle, "@")
	if err := h.notifier.NotifyLike(r.Context(), postID, username, delta); err != nil {
		// Best-effort contract: the optimistic state stands.
		log.Printf("Failed to queue like notification for post %s: %v", postID, err)
	}

	updated, err := h.store.Get(postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		log.Printf("Failed to encode like response: %v", err)
	}
}
