// Package feed owns the canonical, viewer-scoped collection of posts and the
// mutation operations that keep it consistent with the origin. The collection
// is in-memory only; a full fetch is the sole reconciliation point.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"Vigora/internal/origin"
)

// Store is the single source of truth for the posts visible to the current
// viewer. All mutation goes through its methods so the collection invariants
// (unique ids, server ordering, ownership gate) are enforced in one place.
//
// The store is bound to "is there a logged-in viewer": SetViewer populates it,
// Clear empties it on logout.
type Store struct {
	mu     sync.RWMutex
	origin origin.Client
	logger *slog.Logger

	viewer    Author
	hasViewer bool
	posts     []Post
	lastErr   string

	inflight int
	// generation stamps each fetch so a slow response started earlier can
	// never overwrite the result of one started later (last-initiated-wins).
	generation uint64
	applied    uint64
}

// NewStore creates an empty feed store backed by the given origin client.
func NewStore(originClient origin.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		origin: originClient,
		logger: logger,
	}
}

// SetViewer binds a logged-in identity to the store. It does not fetch;
// callers follow up with Refresh.
func (s *Store) SetViewer(viewer Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = viewer
	s.hasViewer = true
}

// Viewer returns the bound identity, if any.
func (s *Store) Viewer() (Author, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer, s.hasViewer
}

// Clear drops the viewer identity and the collection. Fetches still in flight
// for the previous identity are invalidated and their results discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = Author{}
	s.hasViewer = false
	s.posts = nil
	s.lastErr = ""
	s.generation++
	s.applied = s.generation
}

// FetchForUser binds the viewer identity and loads their posts from the
// origin. The leading @ is stripped from the handle before it goes on the
// wire. On any failure the collection keeps its previous contents and the
// load diagnostic is recorded for the UI.
func (s *Store) FetchForUser(ctx context.Context, viewer Author) error {
	s.SetViewer(viewer)
	return s.Refresh(ctx)
}

// Refresh re-fetches the collection for the current viewer. Safe to call while
// a previous refresh is outstanding: each call takes a fresh generation token
// and only the most recently initiated fetch may publish its result.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasViewer {
		s.mu.Unlock()
		return ErrNoViewer
	}
	viewer := s.viewer
	s.generation++
	gen := s.generation
	s.inflight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	username := strings.TrimPrefix(viewer.Handle, "@")

	raw, err := s.origin.FetchPosts(ctx, username)
	if err != nil {
		s.logger.Error("feed fetch failed", "username", username, "error", err)
		s.mu.Lock()
		if gen > s.applied {
			s.lastErr = FeedLoadErrorMessage
		}
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	// Server ordering: strictly descending by origin id.
	sort.Slice(raw, func(i, j int) bool { return raw[i].ID > raw[j].ID })

	posts := make([]Post, 0, len(raw))
	for _, r := range raw {
		posts = append(posts, postFromRaw(r, viewer))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.applied {
		// A newer fetch (or a logout) already published; drop this result.
		s.logger.Debug("stale feed fetch discarded", "generation", gen, "applied", s.applied)
		return nil
	}
	s.applied = gen
	s.posts = posts
	s.lastErr = ""
	return nil
}

// IsRefreshing reports whether any fetch is outstanding, for UI spinners.
func (s *Store) IsRefreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// LastError returns the diagnostic from the most recent failed load, or ""
// after a successful one.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Posts returns a snapshot copy of the collection in display order.
func (s *Store) Posts() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Get returns the post with the given id.
func (s *Store) Get(id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, ErrPostNotFound
}

// AddPost prepends a fully-formed post. The caller must already have confirmed
// the create with the origin; this is a pure local mutation.
func (s *Store) AddPost(p Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.posts {
		if existing.ID == p.ID {
			return ErrDuplicatePost
		}
	}
	s.posts = append([]Post{p}, s.posts...)
	return nil
}

// RemovePost splices out the post with the given id after checking that the
// viewer owns it. Ownership is handle equality against the denormalized
// author snapshot. Sponsored posts are never deletable.
func (s *Store) RemovePost(id, viewerHandle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.posts {
		if p.ID != id {
			continue
		}
		if p.Sponsored {
			return ErrSponsoredPost
		}
		if p.Author.Handle != viewerHandle {
			return ErrNotPostAuthor
		}
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
		return nil
	}
	return ErrPostNotFound
}

// ToggleLike flips the viewer's liked flag on the post and moves the displayed
// counter by one in the matching direction. Purely local-optimistic; the
// returned delta (+1 or -1) is what the caller should report to the origin.
func (s *Store) ToggleLike(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		p := &s.posts[i]
		if p.ID != id {
			continue
		}
		if p.Sponsored {
			return 0, ErrSponsoredPost
		}
		if p.Liked {
			p.Liked = false
			p.LikeCount--
			return -1, nil
		}
		p.Liked = true
		p.LikeCount++
		return 1, nil
	}
	return 0, ErrPostNotFound
}
