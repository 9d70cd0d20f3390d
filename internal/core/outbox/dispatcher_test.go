package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Vigora/internal/origin"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Enqueue(ctx context.Context, n *Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockRepository) NextPending(ctx context.Context, now time.Time, limit int) ([]*Notification, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Notification), args.Error(1)
}

func (m *mockRepository) MarkDelivered(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepository) MarkFailed(ctx context.Context, id int64, attempts int, nextAttempt time.Time) error {
	args := m.Called(ctx, id, attempts, nextAttempt)
	return args.Error(0)
}

func (m *mockRepository) MarkDead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// scriptedOrigin fails NotifyLike until failures runs out.
type scriptedOrigin struct {
	failures int
	calls    []int
}

func (s *scriptedOrigin) FetchPosts(ctx context.Context, username string) ([]origin.RawPost, error) {
	return nil, nil
}

func (s *scriptedOrigin) NotifyLike(ctx context.Context, postID, username string, delta int) error {
	s.calls = append(s.calls, delta)
	if s.failures > 0 {
		s.failures--
		return errors.New("origin down")
	}
	return nil
}

func (s *scriptedOrigin) CreatePost(ctx context.Context, req origin.CreatePostRequest) error {
	return nil
}

func (s *scriptedOrigin) DeletePost(ctx context.Context, postID string) error {
	return nil
}

func TestQueueNotifyLikeEnqueuesPending(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Enqueue", mock.Anything, mock.MatchedBy(func(n *Notification) bool {
		return n.PostID == "42" && n.Username == "maria" && n.Delta == 1 && n.Status == StatusPending
	})).Return(nil)

	q := NewQueue(repo)
	require.NoError(t, q.NotifyLike(context.Background(), "42", "maria", 1))
	repo.AssertExpectations(t)
}

func TestDrainDeliversAndMarks(t *testing.T) {
	repo := new(mockRepository)
	upstream := &scriptedOrigin{}

	pending := []*Notification{
		{ID: 1, PostID: "42", Username: "maria", Delta: 1, Status: StatusPending},
		{ID: 2, PostID: "43", Username: "maria", Delta: -1, Status: StatusPending},
	}
	repo.On("NextPending", mock.Anything, mock.Anything, drainBatchSize).Return(pending, nil)
	repo.On("MarkDelivered", mock.Anything, int64(1)).Return(nil)
	repo.On("MarkDelivered", mock.Anything, int64(2)).Return(nil)

	d := NewDispatcher(repo, upstream, 1000, nil)
	delivered := d.DrainOnce(context.Background())

	assert.Equal(t, 2, delivered)
	assert.Equal(t, []int{1, -1}, upstream.calls)
	repo.AssertExpectations(t)
}

func TestDeliveryFailureSchedulesRetryWithBackoff(t *testing.T) {
	repo := new(mockRepository)
	upstream := &scriptedOrigin{failures: 1}

	pending := []*Notification{{ID: 7, PostID: "42", Username: "maria", Delta: 1, Attempts: 0}}
	repo.On("NextPending", mock.Anything, mock.Anything, drainBatchSize).Return(pending, nil)
	repo.On("MarkFailed", mock.Anything, int64(7), 1, mock.MatchedBy(func(next time.Time) bool {
		return next.After(time.Now().UTC())
	})).Return(nil)

	d := NewDispatcher(repo, upstream, 1000, nil)
	delivered := d.DrainOnce(context.Background())

	assert.Zero(t, delivered)
	repo.AssertExpectations(t)
}

func TestExhaustedAttemptsRetireNotification(t *testing.T) {
	repo := new(mockRepository)
	upstream := &scriptedOrigin{failures: 1}

	pending := []*Notification{{ID: 9, PostID: "42", Username: "maria", Delta: 1, Attempts: defaultMaxAttempts - 1}}
	repo.On("NextPending", mock.Anything, mock.Anything, drainBatchSize).Return(pending, nil)
	repo.On("MarkDead", mock.Anything, int64(9)).Return(nil)

	d := NewDispatcher(repo, upstream, 1000, nil)
	d.DrainOnce(context.Background())

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	d := NewDispatcher(new(mockRepository), &scriptedOrigin{}, 1, nil)

	assert.Equal(t, defaultBaseBackoff, d.backoff(1))
	assert.Equal(t, 2*defaultBaseBackoff, d.backoff(2))
	assert.Equal(t, 10*time.Minute, d.backoff(20))
}
