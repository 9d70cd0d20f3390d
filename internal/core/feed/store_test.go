package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vigora/internal/origin"
)

// stubOrigin lets each test script the fetch path; the write paths are not
// exercised by the store itself.
type stubOrigin struct {
	fetch func(ctx context.Context, username string) ([]origin.RawPost, error)
}

func (s *stubOrigin) FetchPosts(ctx context.Context, username string) ([]origin.RawPost, error) {
	return s.fetch(ctx, username)
}

func (s *stubOrigin) NotifyLike(ctx context.Context, postID, username string, delta int) error {
	return nil
}

func (s *stubOrigin) CreatePost(ctx context.Context, req origin.CreatePostRequest) error {
	return nil
}

func (s *stubOrigin) DeletePost(ctx context.Context, postID string) error {
	return nil
}

var maria = Author{Name: "Maria", Handle: "@maria", Avatar: "http://cdn/m.png"}

func TestFetchForUserSortsDescendingAndStripsSigil(t *testing.T) {
	var gotUsername string
	stub := &stubOrigin{fetch: func(ctx context.Context, username string) ([]origin.RawPost, error) {
		gotUsername = username
		return []origin.RawPost{
			{ID: 3, Titulo: "c"},
			{ID: 11, Titulo: "a"},
			{ID: 7, Titulo: "b"},
		}, nil
	}}
	store := NewStore(stub, nil)

	require.NoError(t, store.FetchForUser(context.Background(), maria))

	assert.Equal(t, "maria", gotUsername, "handle sigil must be stripped before the wire")

	posts := store.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"11", "7", "3"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})

	// Everything fetched this way belongs to the viewer.
	for _, p := range posts {
		assert.Equal(t, maria, p.Author)
	}
}

func TestFetchUnwrapsDoubleEncodedMedia(t *testing.T) {
	stub := &stubOrigin{fetch: func(ctx context.Context, username string) ([]origin.RawPost, error) {
		return []origin.RawPost{
			{ID: 5, Imagem: "\"http://x/y.png\"", Titulo: "T", Descricao: "D"},
		}, nil
	}}
	store := NewStore(stub, nil)

	require.NoError(t, store.FetchForUser(context.Background(), maria))

	posts := store.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "http://x/y.png", posts[0].Image)
	assert.Equal(t, "T\nD", posts[0].Caption)
}

func TestUnwrapQuotedIsIdempotent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"http://x/y.png"`, "http://x/y.png"},
		{"http://x/y.png", "http://x/y.png"},
		{"", ""},
		{`"`, `"`},
	}
	for _, tc := range cases {
		once := unwrapQuoted(tc.in)
		assert.Equal(t, tc.want, once)
		assert.Equal(t, once, unwrapQuoted(once), "second application must be a no-op for %q", tc.in)
	}
}

func TestFetchFailureKeepsPreviousCollection(t *testing.T) {
	fail := false
	stub := &stubOrigin{fetch: func(ctx context.Context, username string) ([]origin.RawPost, error) {
		if fail {
			return nil, origin.ErrOriginUnavailable
		}
		return []origin.RawPost{{ID: 1, Titulo: "keep me"}}, nil
	}}
	store := NewStore(stub, nil)

	require.NoError(t, store.FetchForUser(context.Background(), maria))
	require.Len(t, store.Posts(), 1)

	fail = true
	err := store.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrFeedUnavailable)

	assert.Len(t, store.Posts(), 1, "failed fetch must not clear the collection")
	assert.Equal(t, FeedLoadErrorMessage, store.LastError())

	fail = false
	require.NoError(t, store.Refresh(context.Background()))
	assert.Empty(t, store.LastError(), "successful fetch clears the diagnostic")
}

func TestRefreshWithoutViewer(t *testing.T) {
	store := NewStore(&stubOrigin{}, nil)
	assert.ErrorIs(t, store.Refresh(context.Background()), ErrNoViewer)
}

func TestAddPostPrepends(t *testing.T) {
	store := newPopulatedStore(t, 3)

	p := Post{ID: "new", Author: maria, Caption: "fresh"}
	require.NoError(t, store.AddPost(p))

	posts := store.Posts()
	require.Len(t, posts, 4)
	assert.Equal(t, "new", posts[0].ID)
}

func TestAddPostRejectsDuplicateID(t *testing.T) {
	store := newPopulatedStore(t, 1)
	err := store.AddPost(Post{ID: "1", Author: maria})
	assert.ErrorIs(t, err, ErrDuplicatePost)
	assert.Len(t, store.Posts(), 1)
}

func TestRemovePostIsExact(t *testing.T) {
	store := newPopulatedStore(t, 3)

	require.NoError(t, store.RemovePost("2", "@maria"))

	posts := store.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, "3", posts[0].ID)
	assert.Equal(t, "1", posts[1].ID)

	err := store.RemovePost("999", "@maria")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Len(t, store.Posts(), 2, "removing an absent id must not change the collection")
}

func TestRemovePostOwnershipGate(t *testing.T) {
	store := newPopulatedStore(t, 1)

	err := store.RemovePost("1", "@impostor")
	assert.ErrorIs(t, err, ErrNotPostAuthor)
	assert.Len(t, store.Posts(), 1)
}

func TestRemoveSponsoredPostRejected(t *testing.T) {
	store := NewStore(&stubOrigin{}, nil)
	store.SetViewer(maria)
	require.NoError(t, store.AddPost(Post{ID: "ad-1", Author: maria, Sponsored: true}))

	err := store.RemovePost("ad-1", "@maria")
	assert.ErrorIs(t, err, ErrSponsoredPost)
}

func TestToggleLikeSymmetry(t *testing.T) {
	store := newPopulatedStore(t, 1)

	before, err := store.Get("1")
	require.NoError(t, err)

	delta, err := store.ToggleLike("1")
	require.NoError(t, err)
	assert.Equal(t, 1, delta)

	liked, err := store.Get("1")
	require.NoError(t, err)
	assert.True(t, liked.Liked)
	assert.Equal(t, before.LikeCount+1, liked.LikeCount)

	delta, err = store.ToggleLike("1")
	require.NoError(t, err)
	assert.Equal(t, -1, delta)

	after, err := store.Get("1")
	require.NoError(t, err)
	assert.Equal(t, before.Liked, after.Liked)
	assert.Equal(t, before.LikeCount, after.LikeCount)
}

func TestToggleLikeSponsoredRejected(t *testing.T) {
	store := NewStore(&stubOrigin{}, nil)
	store.SetViewer(maria)
	require.NoError(t, store.AddPost(Post{ID: "ad-1", Author: maria, Sponsored: true}))

	_, err := store.ToggleLike("ad-1")
	assert.ErrorIs(t, err, ErrSponsoredPost)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	store := newPopulatedStore(t, 1)
	_, err := store.ToggleLike("999")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

// TestDoubleRefreshLastInitiatedWins pins the hardened overlap semantics: a
// slow fetch started first must not overwrite the result of a fetch started
// after it, even when the slow one resolves last.
func TestDoubleRefreshLastInitiatedWins(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	stub := &stubOrigin{fetch: func(ctx context.Context, username string) ([]origin.RawPost, error) {
		mu.Lock()
		calls++
		call := calls
		mu.Unlock()

		if call == 1 {
			<-release // slow first fetch, resolves with collection A after B
			return []origin.RawPost{{ID: 1, Titulo: "A"}}, nil
		}
		return []origin.RawPost{{ID: 2, Titulo: "B"}}, nil
	}}

	store := NewStore(stub, nil)
	store.SetViewer(maria)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Refresh(context.Background()) //nolint:errcheck
	}()

	// Wait until the slow fetch is parked, then run the fast one to completion.
	for {
		mu.Lock()
		started := calls >= 1
		mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, store.Refresh(context.Background()))

	close(release)
	wg.Wait()

	posts := store.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "B", posts[0].Caption, "stale fetch result must be discarded")
	assert.False(t, store.IsRefreshing())
}

func TestClearInvalidatesInflightFetch(t *testing.T) {
	release := make(chan struct{})
	stub := &stubOrigin{fetch: func(ctx context.Context, username string) ([]origin.RawPost, error) {
		<-release
		return []origin.RawPost{{ID: 1, Titulo: "stale"}}, nil
	}}

	store := NewStore(stub, nil)
	store.SetViewer(maria)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Refresh(context.Background()) //nolint:errcheck
	}()

	store.Clear()
	close(release)
	wg.Wait()

	assert.Empty(t, store.Posts(), "logout must discard results of fetches still in flight")
	_, ok := store.Viewer()
	assert.False(t, ok)
}

// newPopulatedStore fetches n posts with ids 1..n (displayed descending).
func newPopulatedStore(t *testing.T, n int) *Store {
	t.Helper()
	stub := &stubOrigin{fetch: func(ctx context.Context, username string) ([]origin.RawPost, error) {
		raw := make([]origin.RawPost, 0, n)
		for i := 1; i <= n; i++ {
			raw = append(raw, origin.RawPost{ID: int64(i), Titulo: "post"})
		}
		return raw, nil
	}}
	store := NewStore(stub, nil)
	require.NoError(t, store.FetchForUser(context.Background(), maria))
	require.Len(t, store.Posts(), n)
	return store
}
