package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	catalogmodel "github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/cinelogapp/cinelog/review/pkg/model"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrValidation      = errors.New("invalid submission")
)

type reviewRepository interface {
	GetByMovie(ctx context.Context, movieID catalogmodel.MovieID, order model.Order) ([]model.Review, error)
	GetByAuthor(ctx context.Context, authorID model.UserID) ([]model.Review, error)
	Put(ctx context.Context, movieID catalogmodel.MovieID, review model.Review) error
	PutForAuthor(ctx context.Context, authorID model.UserID, review model.Review) error
}

type identityGateway interface {
	Resolve(ctx context.Context, id model.UserID) (*model.Identity, error)
}

type identityCache interface {
	Get(ctx context.Context, id model.UserID) (*model.Identity, error)
	Put(ctx context.Context, id model.UserID, ident *model.Identity) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event model.ReviewEvent) error
}

type submission struct {
	MovieID string  `validate:"required"`
	Rating  float64 `validate:"gte=0,lte=5"`
	Comment string  `validate:"max=2000"`
}

// Controller aggregates per-movie reviews with resolved author identities
// and coordinates review submission. The identity cache is constructed
// once per session and injected; the controller only ever reads through
// it, never invalidates.
type Controller struct {
	repo       reviewRepository
	cache      identityCache
	identities identityGateway
	publisher  eventPublisher
	validate   *validator.Validate
	logger     *zap.Logger
	scope      tally.Scope
}

// New creates a review controller. publisher may be nil, in which case no
// events are emitted.
func New(repo reviewRepository, cache identityCache, identities identityGateway, publisher eventPublisher, logger *zap.Logger, scope tally.Scope) *Controller {
	return &Controller{
		repo:       repo,
		cache:      cache,
		identities: identities,
		publisher:  publisher,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
		scope:      scope,
	}
}

// GetAggregatedView returns the movie's reviews in the requested order,
// each carrying a resolved display identity, together with the mean
// rating. An empty review set yields an average of 0.
func (c *Controller) GetAggregatedView(ctx context.Context, movieID catalogmodel.MovieID, order model.Order) (*model.AggregatedReviews, error) {
	reviews, err := c.repo.GetByMovie(ctx, movieID, order)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews for %s: %w", movieID, err)
	}
	c.resolveAuthors(ctx, reviews)
	return &model.AggregatedReviews{
		MovieID:       movieID,
		Reviews:       reviews,
		AverageRating: averageRating(reviews),
	}, nil
}

// GetByAuthor returns the author's review history, newest first, with
// resolved identities.
func (c *Controller) GetByAuthor(ctx context.Context, authorID model.UserID) ([]model.Review, error) {
	reviews, err := c.repo.GetByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews by %s: %w", authorID, err)
	}
	c.resolveAuthors(ctx, reviews)
	return reviews, nil
}

// Submit validates and persists a new review under both the per-movie and
// the per-author collection, then re-aggregates the movie's view. The two
// writes are independent: a failure on the author leg does not roll back
// the movie leg.
func (c *Controller) Submit(ctx context.Context, actorID model.UserID, movieID catalogmodel.MovieID, rating float64, comment string, posterRef string) (*model.AggregatedReviews, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if err := c.validate.Struct(submission{MovieID: string(movieID), Rating: rating, Comment: comment}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ident := c.resolveIdentity(ctx, actorID, map[model.UserID]*model.Identity{})
	rev := model.Review{
		ID:          model.ReviewID(uuid.NewString()),
		MovieID:     movieID,
		AuthorID:    actorID,
		DisplayName: ident.DisplayName,
		AvatarRef:   ident.AvatarRef,
		Rating:      rating,
		Comment:     comment,
		PosterRef:   posterRef,
		CreatedAt:   time.Now().UTC(),
	}

	if err := c.repo.Put(ctx, movieID, rev); err != nil {
		return nil, fmt.Errorf("persist review for movie %s: %w", movieID, err)
	}
	if err := c.repo.PutForAuthor(ctx, actorID, rev); err != nil {
		// The movie-side write already happened and stays. Known
		// inconsistency window, reported rather than hidden.
		return nil, fmt.Errorf("persist review for author %s: %w", actorID, err)
	}
	c.scope.Counter("reviews_submitted").Inc(1)

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, model.ReviewEvent{Review: rev, EventType: model.ReviewEventTypePut}); err != nil {
			c.logger.Warn("Failed to publish review event",
				zap.String("reviewId", string(rev.ID)), zap.Error(err))
		}
	}

	return c.GetAggregatedView(ctx, movieID, model.OrderCreatedAsc)
}

// resolveAuthors fills in display identities for every review in place.
// locals dedupes fallback lookups within one aggregation so a failing
// author is fetched once per call, not once per review.
func (c *Controller) resolveAuthors(ctx context.Context, reviews []model.Review) {
	locals := map[model.UserID]*model.Identity{}
	for i := range reviews {
		ident := c.resolveIdentity(ctx, reviews[i].AuthorID, locals)
		reviews[i].DisplayName = ident.DisplayName
		reviews[i].AvatarRef = ident.AvatarRef
	}
}

// resolveIdentity reads through the session cache. Resolution failures
// yield the anonymous fallback, which is remembered for the current call
// only; the shared cache holds resolved identities exclusively.
func (c *Controller) resolveIdentity(ctx context.Context, id model.UserID, locals map[model.UserID]*model.Identity) *model.Identity {
	if ident, ok := locals[id]; ok {
		return ident
	}
	if ident, err := c.cache.Get(ctx, id); err == nil {
		c.scope.Counter("identity_cache_hits").Inc(1)
		locals[id] = ident
		return ident
	}
	c.scope.Counter("identity_cache_misses").Inc(1)

	ident, err := c.identities.Resolve(ctx, id)
	if err != nil {
		c.logger.Warn("Failed to resolve identity, using fallback",
			zap.String("userId", string(id)), zap.Error(err))
		ident = &model.Identity{UserID: id, DisplayName: model.AnonymousDisplayName}
		locals[id] = ident
		return ident
	}
	if err := c.cache.Put(ctx, id, ident); err != nil {
		c.logger.Warn("Failed to update identity cache", zap.Error(err))
	}
	locals[id] = ident
	return ident
}

// averageRating is the arithmetic mean, unrounded. Rounding happens at
// presentation time.
func averageRating(reviews []model.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}
