package routes

import (
	"github.com/go-chi/chi/v5"

	"Vigora/internal/api/handlers/post"
	"Vigora/internal/api/middleware"
	"Vigora/internal/core/feed"
	"Vigora/internal/origin"
)

// RegisterPostRoutes registers the post mutation endpoints on the router.
// All of them require a logged-in viewer.
func RegisterPostRoutes(r chi.Router, store *feed.Store, originClient origin.Client, notifier post.LikeNotifier, sessions *middleware.SessionManager) {
	createHandler := post.NewCreateHandler(store, originClient)
	deleteHandler := post.NewDeleteHandler(store, originClient)
	likeHandler := post.NewLikeHandler(store, notifier)

	r.With(sessions.RequireViewer).Post("/api/posts", createHandler.HandleCreate)
	r.With(sessions.RequireViewer).Delete("/api/posts/{id}", deleteHandler.HandleDelete)
	r.With(sessions.RequireViewer).Post("/api/posts/{id}/like", likeHandler.HandleLike)
}
