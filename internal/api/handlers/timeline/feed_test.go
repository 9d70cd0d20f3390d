package timeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vigora/internal/core/feed"
	"Vigora/internal/origin"
)

type stubOrigin struct {
	posts []origin.RawPost
	err   error
}

func (o *stubOrigin) FetchPosts(ctx context.Context, username string) ([]origin.RawPost, error) {
	return o.posts, o.err
}

func (o *stubOrigin) NotifyLike(ctx context.Context, postID, username string, delta int) error {
	return nil
}

func (o *stubOrigin) CreatePost(ctx context.Context, req origin.CreatePostRequest) error {
	return nil
}

func (o *stubOrigin) DeletePost(ctx context.Context, postID string) error {
	return nil
}

func TestGetReturnsSnapshot(t *testing.T) {
	upstream := &stubOrigin{posts: []origin.RawPost{
		{ID: 2, Titulo: "second"},
		{ID: 7, Titulo: "first"},
	}}
	store := feed.NewStore(upstream, nil)
	require.NoError(t, store.FetchForUser(context.Background(), feed.Author{Name: "Maria", Handle: "@maria"}))

	handler := NewHandler(store)
	rec := httptest.NewRecorder()
	handler.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/api/feed", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Posts      []feed.Post `json:"posts"`
		Refreshing bool        `json:"refreshing"`
		Error      string      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 2)
	assert.Equal(t, "7", resp.Posts[0].ID, "newest first")
	assert.False(t, resp.Refreshing)
	assert.Empty(t, resp.Error)
}

func TestRefreshWithoutViewerIsUnauthorized(t *testing.T) {
	store := feed.NewStore(&stubOrigin{}, nil)
	handler := NewHandler(store)

	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/feed/refresh", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshFailureKeepsPostsAndReportsDiagnostic(t *testing.T) {
	upstream := &stubOrigin{posts: []origin.RawPost{{ID: 1, Titulo: "kept"}}}
	store := feed.NewStore(upstream, nil)
	require.NoError(t, store.FetchForUser(context.Background(), feed.Author{Name: "Maria", Handle: "@maria"}))

	upstream.err = origin.ErrOriginUnavailable
	handler := NewHandler(store)

	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/feed/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code, "a failed refresh is not an HTTP failure")

	var resp struct {
		Posts []feed.Post `json:"posts"`
		Error string      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Posts, 1, "stale posts stay visible")
	assert.Equal(t, feed.FeedLoadErrorMessage, resp.Error)
}

func TestRefreshRecoveryClearsDiagnostic(t *testing.T) {
	upstream := &stubOrigin{}
	store := feed.NewStore(upstream, nil)
	require.NoError(t, store.FetchForUser(context.Background(), feed.Author{Name: "Maria", Handle: "@maria"}))

	upstream.err = origin.ErrOriginUnavailable
	handler := NewHandler(store)
	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/feed/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	upstream.err = nil
	upstream.posts = []origin.RawPost{{ID: 3, Titulo: "fresh"}}
	rec = httptest.NewRecorder()
	handler.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/feed/refresh", nil))

	var resp struct {
		Posts []feed.Post `json:"posts"`
		Error string      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Posts, 1)
	assert.Empty(t, resp.Error, "diagnostic clears on the next successful load")
}
