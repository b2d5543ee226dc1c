package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	catalogmodel "github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/cinelogapp/cinelog/review/pkg/model"
	_ "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
)

const tracerID = "review-repository-mysql"

// Repository is a MySQL review store. The per-movie and per-author
// collections are independent tables: a submission writes to both with no
// cross-table transaction, mirroring the two logical write locations.
type Repository struct {
	db *sql.DB
}

// New creates a new MySQL-based repository.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) GetByMovie(ctx context.Context, movieID catalogmodel.MovieID, order model.Order) ([]model.Review, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetByMovie")
	defer span.End()

	dir := "ASC"
	if order == model.OrderNewestFirst {
		dir = "DESC"
	}
	q := fmt.Sprintf("SELECT review_id, movie_id, author_id, rating, comment, poster_ref, created_at FROM reviews WHERE movie_id = ? ORDER BY created_at %s", dir)
	rows, err := r.db.QueryContext(ctx, q, string(movieID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (r *Repository) GetByAuthor(ctx context.Context, authorID model.UserID) ([]model.Review, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetByAuthor")
	defer span.End()

	rows, err := r.db.QueryContext(ctx,
		"SELECT review_id, movie_id, author_id, rating, comment, poster_ref, created_at FROM author_reviews WHERE author_id = ? ORDER BY created_at DESC",
		string(authorID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (r *Repository) Put(ctx context.Context, movieID catalogmodel.MovieID, review model.Review) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Put")
	defer span.End()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (review_id, movie_id, author_id, rating, comment, poster_ref, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		string(review.ID), string(movieID), string(review.AuthorID), review.Rating, review.Comment, review.PosterRef, review.CreatedAt)
	return err
}

func (r *Repository) PutForAuthor(ctx context.Context, authorID model.UserID, review model.Review) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/PutForAuthor")
	defer span.End()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO author_reviews (review_id, movie_id, author_id, rating, comment, poster_ref, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		string(review.ID), string(review.MovieID), string(authorID), review.Rating, review.Comment, review.PosterRef, review.CreatedAt)
	return err
}

func scanReviews(rows *sql.Rows) ([]model.Review, error) {
	var res []model.Review
	for rows.Next() {
		var rev model.Review
		var reviewID, movieID, authorID string
		if err := rows.Scan(&reviewID, &movieID, &authorID, &rev.Rating, &rev.Comment, &rev.PosterRef, &rev.CreatedAt); err != nil {
			return nil, err
		}
		rev.ID = model.ReviewID(reviewID)
		rev.MovieID = catalogmodel.MovieID(movieID)
		rev.AuthorID = model.UserID(authorID)
		res = append(res, rev)
	}
	return res, rows.Err()
}
