package timeline

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Vigora/internal/core/feed"
)

// Handler serves the feed snapshot and the pull-to-refresh trigger.
type Handler struct {
	store *feed.Store
}

// NewHandler creates a feed view handler.
func NewHandler(store *feed.Store) *Handler {
	return &Handler{store: store}
}

type feedResponse struct {
	Posts      []feed.Post `json:"posts"`
	Refreshing bool        `json:"refreshing"`
	Error      string      `json:"error,omitempty"`
}

// HandleGet handles GET /api/feed
// Returns the current collection plus the refresh flag and the last load
// diagnostic, so the UI can render the spinner and the inline error panel.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w)
}

// HandleRefresh handles POST /api/feed/refresh
// Runs a refresh for the current viewer and returns the resulting snapshot.
// On origin failure the previous collection is kept and the diagnostic is
// reported; the UI shows the banner and the stale posts stay visible.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Refresh(r.Context()); err != nil {
		switch {
		case errors.Is(err, feed.ErrNoViewer):
			writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
			return
		case errors.Is(err, feed.ErrFeedUnavailable):
			// Not fatal for the view: respond with the snapshot, which now
			// carries the load diagnostic.
		default:
			log.Printf("Unexpected error refreshing feed: %v", err)
			writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
			return
		}
	}
	h.writeSnapshot(w)
}

func (h *Handler) writeSnapshot(w http.ResponseWriter) {
	resp := feedResponse{
		Posts:      h.store.Posts(),
		Refreshing: h.store.IsRefreshing(),
		Error:      h.store.LastError(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode feed response: %v", err)
	}
}
