package review

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	catalogmodel "github.com/cinelogapp/cinelog/catalog/pkg/model"
	cachememory "github.com/cinelogapp/cinelog/review/internal/cache/memory"
	repomemory "github.com/cinelogapp/cinelog/review/internal/repository/memory"
	"github.com/cinelogapp/cinelog/review/pkg/model"
)

// countingRepo wraps the memory repository and counts writes so tests can
// assert that rejected submissions perform no persistence at all.
type countingRepo struct {
	inner          *repomemory.Repository
	puts           int32
	putsForAuthor  int32
	failAuthorLeg  bool
}

func (r *countingRepo) GetByMovie(ctx context.Context, movieID catalogmodel.MovieID, order model.Order) ([]model.Review, error) {
	return r.inner.GetByMovie(ctx, movieID, order)
}

func (r *countingRepo) GetByAuthor(ctx context.Context, authorID model.UserID) ([]model.Review, error) {
	return r.inner.GetByAuthor(ctx, authorID)
}

func (r *countingRepo) Put(ctx context.Context, movieID catalogmodel.MovieID, review model.Review) error {
	atomic.AddInt32(&r.puts, 1)
	return r.inner.Put(ctx, movieID, review)
}

func (r *countingRepo) PutForAuthor(ctx context.Context, authorID model.UserID, review model.Review) error {
	if r.failAuthorLeg {
		return errors.New("author store unavailable")
	}
	atomic.AddInt32(&r.putsForAuthor, 1)
	return r.inner.PutForAuthor(ctx, authorID, review)
}

type countingPublisher struct {
	published int32
}

func (p *countingPublisher) Publish(ctx context.Context, event model.ReviewEvent) error {
	atomic.AddInt32(&p.published, 1)
	return nil
}

func seedReview(t *testing.T, repo *countingRepo, movieID, authorID string, rating float64, createdAt time.Time) {
	t.Helper()
	rev := model.Review{
		ID:        model.ReviewID("r-" + authorID + "-" + createdAt.Format("150405")),
		MovieID:   catalogmodel.MovieID(movieID),
		AuthorID:  model.UserID(authorID),
		Rating:    rating,
		Comment:   "seeded",
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Put(context.Background(), rev.MovieID, rev))
	require.NoError(t, repo.PutForAuthor(context.Background(), rev.AuthorID, rev))
}

func newTestController(t *testing.T) (*Controller, *countingRepo, *MockidentityGateway, *countingPublisher) {
	t.Helper()
	mockCtrl := gomock.NewController(t)
	repo := &countingRepo{inner: repomemory.New()}
	identities := NewMockidentityGateway(mockCtrl)
	publisher := &countingPublisher{}
	ctrl := New(repo, cachememory.New(), identities, publisher, zap.NewNop(), tally.NoopScope)
	return ctrl, repo, identities, publisher
}

func TestGetAggregatedView_AverageRating(t *testing.T) {
	ctrl, repo, identities, _ := newTestController(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedReview(t, repo, "m1", "u1", 5, base)
	seedReview(t, repo, "m1", "u2", 3, base.Add(time.Hour))
	seedReview(t, repo, "m1", "u3", 4, base.Add(2*time.Hour))
	identities.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, id model.UserID) (*model.Identity, error) {
			return &model.Identity{UserID: id, DisplayName: "User " + string(id)}, nil
		}).AnyTimes()

	view, err := ctrl.GetAggregatedView(context.Background(), "m1", model.OrderCreatedAsc)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, view.AverageRating, 1e-9)
	require.Len(t, view.Reviews, 3)
	assert.Equal(t, model.UserID("u1"), view.Reviews[0].AuthorID)
	assert.Equal(t, "User u2", view.Reviews[1].DisplayName)
}

func TestGetAggregatedView_EmptyIsZeroNotError(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)

	view, err := ctrl.GetAggregatedView(context.Background(), "nothing-here", model.OrderCreatedAsc)
	require.NoError(t, err)
	assert.Zero(t, view.AverageRating)
	assert.Empty(t, view.Reviews)
}

func TestGetAggregatedView_NewestFirstOrder(t *testing.T) {
	ctrl, repo, identities, _ := newTestController(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedReview(t, repo, "m1", "u1", 2, base)
	seedReview(t, repo, "m1", "u2", 4, base.Add(time.Hour))
	identities.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(&model.Identity{DisplayName: "X"}, nil).AnyTimes()

	view, err := ctrl.GetAggregatedView(context.Background(), "m1", model.OrderNewestFirst)
	require.NoError(t, err)
	require.Len(t, view.Reviews, 2)
	assert.Equal(t, model.UserID("u2"), view.Reviews[0].AuthorID)
}

func TestGetAggregatedView_AnonymousFallbackKeepsReview(t *testing.T) {
	ctrl, repo, identities, _ := newTestController(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedReview(t, repo, "m1", "u1", 5, base)
	seedReview(t, repo, "m1", "u2", 3, base.Add(time.Hour))
	seedReview(t, repo, "m1", "u3", 4, base.Add(2*time.Hour))
	identities.EXPECT().Resolve(gomock.Any(), model.UserID("u1")).Return(&model.Identity{UserID: "u1", DisplayName: "Alice"}, nil)
	identities.EXPECT().Resolve(gomock.Any(), model.UserID("u2")).Return(nil, errors.New("users service down"))
	identities.EXPECT().Resolve(gomock.Any(), model.UserID("u3")).Return(&model.Identity{UserID: "u3", DisplayName: "Chloe"}, nil)

	view, err := ctrl.GetAggregatedView(context.Background(), "m1", model.OrderCreatedAsc)
	require.NoError(t, err)
	require.Len(t, view.Reviews, 3)
	assert.Equal(t, "Alice", view.Reviews[0].DisplayName)
	assert.Equal(t, model.AnonymousDisplayName, view.Reviews[1].DisplayName)
	assert.Empty(t, view.Reviews[1].AvatarRef)
	assert.Equal(t, "Chloe", view.Reviews[2].DisplayName)
}

func TestIdentityResolvedOncePerSession(t *testing.T) {
	ctrl, repo, identities, _ := newTestController(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedReview(t, repo, "m1", "u1", 5, base)
	seedReview(t, repo, "m1", "u1", 3, base.Add(time.Hour))
	// Two reviews by the same author across two aggregation calls still
	// resolve exactly once.
	identities.EXPECT().Resolve(gomock.Any(), model.UserID("u1")).Return(&model.Identity{UserID: "u1", DisplayName: "Alice"}, nil).Times(1)

	_, err := ctrl.GetAggregatedView(context.Background(), "m1", model.OrderCreatedAsc)
	require.NoError(t, err)
	view, err := ctrl.GetAggregatedView(context.Background(), "m1", model.OrderCreatedAsc)
	require.NoError(t, err)
	assert.Equal(t, "Alice", view.Reviews[0].DisplayName)
	assert.Equal(t, "Alice", view.Reviews[1].DisplayName)
}

func TestAggregationIdempotence(t *testing.T) {
	ctrl, repo, identities, _ := newTestController(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedReview(t, repo, "m1", "u1", 5, base)
	seedReview(t, repo, "m1", "u2", 2, base.Add(time.Hour))
	identities.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, id model.UserID) (*model.Identity, error) {
			return &model.Identity{UserID: id, DisplayName: "User " + string(id)}, nil
		}).AnyTimes()

	first, err := ctrl.GetAggregatedView(context.Background(), "m1", model.OrderCreatedAsc)
	require.NoError(t, err)
	second, err := ctrl.GetAggregatedView(context.Background(), "m1", model.OrderCreatedAsc)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("aggregated views differ (-first +second):\n%s", diff)
	}
}

func TestSubmit_RatingOutOfRangeIsLocal(t *testing.T) {
	ctrl, repo, _, publisher := newTestController(t)

	_, err := ctrl.Submit(context.Background(), "u1", "m1", 7, "way too good", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, atomic.LoadInt32(&repo.puts))
	assert.Zero(t, atomic.LoadInt32(&repo.putsForAuthor))
	assert.Zero(t, atomic.LoadInt32(&publisher.published))
}

func TestSubmit_NegativeRatingIsLocal(t *testing.T) {
	ctrl, repo, _, _ := newTestController(t)

	_, err := ctrl.Submit(context.Background(), "u1", "m1", -0.5, "", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, atomic.LoadInt32(&repo.puts))
}

func TestSubmit_Unauthenticated(t *testing.T) {
	ctrl, repo, _, _ := newTestController(t)

	_, err := ctrl.Submit(context.Background(), "", "m1", 4, "fine", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, atomic.LoadInt32(&repo.puts))
}

func TestSubmit_RefreshesAggregatedView(t *testing.T) {
	ctrl, repo, identities, publisher := newTestController(t)
	identities.EXPECT().Resolve(gomock.Any(), model.UserID("u1")).Return(&model.Identity{UserID: "u1", DisplayName: "Alice", AvatarRef: "http://img/alice.png"}, nil)

	view, err := ctrl.Submit(context.Background(), "u1", "m1", 4, "solid", "http://img/poster.png")
	require.NoError(t, err)
	require.Len(t, view.Reviews, 1)
	assert.InDelta(t, 4.0, view.AverageRating, 1e-9)
	assert.Equal(t, "Alice", view.Reviews[0].DisplayName)
	assert.EqualValues(t, 1, atomic.LoadInt32(&repo.puts))
	assert.EqualValues(t, 1, atomic.LoadInt32(&repo.putsForAuthor))
	assert.EqualValues(t, 1, atomic.LoadInt32(&publisher.published))

	// The author copy is retrievable under the personal history.
	mine, err := ctrl.GetByAuthor(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, catalogmodel.MovieID("m1"), mine[0].MovieID)
}

func TestSubmit_AuthorLegFailureIsReported(t *testing.T) {
	ctrl, repo, identities, publisher := newTestController(t)
	repo.failAuthorLeg = true
	identities.EXPECT().Resolve(gomock.Any(), model.UserID("u1")).Return(&model.Identity{UserID: "u1", DisplayName: "Alice"}, nil)

	_, err := ctrl.Submit(context.Background(), "u1", "m1", 4, "solid", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist review for author")

	// The movie-side write is not rolled back and no event is emitted.
	reviews, err := repo.GetByMovie(context.Background(), "m1", model.OrderCreatedAsc)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Zero(t, atomic.LoadInt32(&publisher.published))
}
