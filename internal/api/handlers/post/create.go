package post

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"Vigora/internal/api/middleware"
	"Vigora/internal/core/feed"
	"Vigora/internal/core/media"
	"Vigora/internal/origin"
)

// maxCreateBody bounds a create request. Base64 video payloads are the big
// case; 24MB of body is roughly an 18MB clip.
const maxCreateBody = 24 * 1024 * 1024

// maxMediaBytes caps the decoded media payload.
const maxMediaBytes = 16 * 1024 * 1024

// CreateHandler handles post publication.
type CreateHandler struct {
	store  *feed.Store
	origin origin.Client
}

// NewCreateHandler creates a create handler.
func NewCreateHandler(store *feed.Store, originClient origin.Client) *CreateHandler {
	return &CreateHandler{store: store, origin: originClient}
}

type createRequest struct {
	Title   string `json:"title"`
	Caption string `json:"caption"`
	Image   string `json:"image,omitempty"` // base64 data URI
	Video   string `json:"video,omitempty"` // base64 data URI
}

// HandleCreate handles POST /api/posts
// Confirm-then-mutate: the origin must accept the post before it is prepended
// to the local collection. On failure nothing is mutated; the client keeps its
// form state and may retry.
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	// 1. Bound the body before decoding
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	// 2. Resolve the viewer; the author snapshot comes from the store, never
	// from the client, so nobody publishes as somebody else
	viewerHandle := middleware.GetViewerHandle(r)
	viewer, ok := h.store.Viewer()
	if !ok || viewer.Handle != viewerHandle {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	// 3. Validate the form: some text and exactly one media attachment
	req.Title = strings.TrimSpace(req.Title)
	req.Caption = strings.TrimSpace(req.Caption)
	if req.Title == "" && req.Caption == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "title or caption is required")
		return
	}
	if (req.Image == "") == (req.Video == "") {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "exactly one of image or video is required")
		return
	}

	// 4. Decode and normalize the media
	upstreamReq := origin.CreatePostRequest{
		Username: strings.TrimPrefix(viewer.Handle, "@"),
		Title:    req.Title,
		Caption:  req.Caption,
	}

	localPost := feed.Post{
		ID:      uuid.NewString(),
		Author:  viewer,
		Caption: joinCaption(req.Title, req.Caption),
	}

	switch {
	case req.Image != "":
		parsed, err := media.ParseDataURI(req.Image, maxMediaBytes)
		if err != nil {
			handleMediaError(w, err)
			return
		}
		if kind, err := parsed.Kind(); err != nil || kind != media.KindImage {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "image field must carry image media")
			return
		}
		normalized, err := media.NormalizeImage(parsed)
		if err != nil {
			handleMediaError(w, err)
			return
		}
		encoded := normalized.Encode()
		upstreamReq.Imagem = encoded
		localPost.Image = encoded

	case req.Video != "":
		parsed, err := media.ParseDataURI(req.Video, maxMediaBytes)
		if err != nil {
			handleMediaError(w, err)
			return
		}
		if kind, err := parsed.Kind(); err != nil || kind != media.KindVideo {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "video field must carry video media")
			return
		}
		upstreamReq.Video = req.Video
		localPost.Video = req.Video
	}

	// 5. Confirm with the origin first
	if err := h.origin.CreatePost(r.Context(), upstreamReq); err != nil {
		log.Printf("Post publish rejected by origin: %v", err)
		writeError(w, http.StatusBadGateway, "PublishFailed", "Não foi possível publicar. Tente novamente.")
		return
	}

	// 6. Only then prepend locally
	if err := h.store.AddPost(localPost); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(localPost); err != nil {
		log.Printf("Failed to encode created post: %v", err)
	}
}

// joinCaption mirrors how fetched posts render title and description as one
// caption block.
func joinCaption(title, caption string) string {
	if title == "" {
		return caption
	}
	if caption == "" {
		return title
	}
	return title + "\n" + caption
}
