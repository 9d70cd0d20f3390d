package session

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"Vigora/internal/api/middleware"
	"Vigora/internal/core/feed"
)

// Handler binds and clears the viewer identity. The feed store is
// lifecycle-bound to the session: login populates it, logout clears it.
type Handler struct {
	store    *feed.Store
	sessions *middleware.SessionManager
}

// NewHandler creates a session handler.
func NewHandler(store *feed.Store, sessions *middleware.SessionManager) *Handler {
	return &Handler{store: store, sessions: sessions}
}

type loginRequest struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
	Avatar string `json:"avatar,omitempty"`
}

type loginResponse struct {
	Handle    string `json:"handle"`
	FeedError string `json:"feedError,omitempty"`
}

// HandleLogin handles POST /api/session
// Binds the viewer identity and loads their feed. A failed feed load does not
// fail the login; the diagnostic travels back so the UI can show the banner.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	req.Handle = strings.TrimSpace(req.Handle)
	if req.Handle == "" || req.Handle == "@" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "handle is required")
		return
	}
	if !strings.HasPrefix(req.Handle, "@") {
		req.Handle = "@" + req.Handle
	}
	if req.Name == "" {
		req.Name = strings.TrimPrefix(req.Handle, "@")
	}

	if err := h.sessions.SetViewer(w, r, req.Handle); err != nil {
		log.Printf("Failed to save session: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
		return
	}

	viewer := feed.Author{Name: req.Name, Handle: req.Handle, Avatar: req.Avatar}

	resp := loginResponse{Handle: req.Handle}
	if err := h.store.FetchForUser(r.Context(), viewer); err != nil {
		// Collection stays at its previous (possibly empty) state.
		resp.FeedError = h.store.LastError()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode login response: %v", err)
	}
}

// HandleLogout handles DELETE /api/session
// Clears the cookie and drops the feed collection.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearViewer(w, r); err != nil {
		log.Printf("Failed to clear session: %v", err)
	}
	h.store.Clear()
	w.WriteHeader(http.StatusNoContent)
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
