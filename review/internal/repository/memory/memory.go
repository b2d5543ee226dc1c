package memory

import (
	"context"
	"sort"
	"sync"

	catalogmodel "github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/cinelogapp/cinelog/review/pkg/model"
	"go.opentelemetry.io/otel"
)

const tracerID = "review-repository-memory"

// Repository is an in-memory review store keeping the two logical
// collections of a submission: reviews by movie and by author.
type Repository struct {
	sync.RWMutex
	byMovie  map[catalogmodel.MovieID][]model.Review
	byAuthor map[model.UserID][]model.Review
}

// New creates a new memory repository.
func New() *Repository {
	return &Repository{
		byMovie:  map[catalogmodel.MovieID][]model.Review{},
		byAuthor: map[model.UserID][]model.Review{},
	}
}

// GetByMovie returns all reviews for a movie in the requested order. A
// movie without reviews yields an empty list, not an error.
func (r *Repository) GetByMovie(ctx context.Context, movieID catalogmodel.MovieID, order model.Order) ([]model.Review, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetByMovie")
	defer span.End()

	res := append([]model.Review(nil), r.byMovie[movieID]...)
	sortReviews(res, order)
	return res, nil
}

// GetByAuthor returns the author's personal review history, newest first.
func (r *Repository) GetByAuthor(ctx context.Context, authorID model.UserID) ([]model.Review, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetByAuthor")
	defer span.End()

	res := append([]model.Review(nil), r.byAuthor[authorID]...)
	sortReviews(res, model.OrderNewestFirst)
	return res, nil
}

// Put stores a review in the per-movie collection.
func (r *Repository) Put(ctx context.Context, movieID catalogmodel.MovieID, review model.Review) error {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Put")
	defer span.End()

	r.byMovie[movieID] = append(r.byMovie[movieID], review)
	return nil
}

// PutForAuthor stores a review in the per-author collection.
func (r *Repository) PutForAuthor(ctx context.Context, authorID model.UserID, review model.Review) error {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/PutForAuthor")
	defer span.End()

	r.byAuthor[authorID] = append(r.byAuthor[authorID], review)
	return nil
}

func sortReviews(reviews []model.Review, order model.Order) {
	sort.SliceStable(reviews, func(i, j int) bool {
		if order == model.OrderNewestFirst {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
		return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
	})
}
