package feed

import "errors"

var (
	// ErrPostNotFound indicates no post with the given id is in the collection
	ErrPostNotFound = errors.New("post not found")

	// ErrDuplicatePost indicates a post with the same id is already present
	ErrDuplicatePost = errors.New("post already exists")

	// ErrNotPostAuthor indicates the viewer's handle does not match the post
	// author's handle
	ErrNotPostAuthor = errors.New("viewer is not the post author")

	// ErrSponsoredPost indicates the operation is not available on sponsored
	// posts (no likes, no deletion)
	ErrSponsoredPost = errors.New("operation not available on sponsored posts")

	// ErrNoViewer indicates no logged-in identity is bound to the store
	ErrNoViewer = errors.New("no viewer identity set")

	// ErrFeedUnavailable indicates the last fetch failed and the collection
	// was left at its previous state
	ErrFeedUnavailable = errors.New("feed unavailable")
)

// FeedLoadErrorMessage is the user-facing diagnostic shown when a feed fetch
// fails, matching the app's Portuguese copy.
const FeedLoadErrorMessage = "Erro ao Carregar o Feed"
