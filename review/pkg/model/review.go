package model

import (
	"time"

	"github.com/cinelogapp/cinelog/catalog/pkg/model"
)

type ReviewID string
type UserID string

// AnonymousDisplayName is used when an author's identity cannot be resolved.
const AnonymousDisplayName = "Anonymous"

// Order selects the server-defined ordering of a fetched review set.
type Order string

const (
	// OrderCreatedAsc is the per-movie view order (oldest first).
	OrderCreatedAsc = Order("created_asc")
	// OrderNewestFirst is the per-author profile order.
	OrderNewestFirst = Order("newest_first")
)

// Review is immutable once created. DisplayName and AvatarRef are resolved
// at aggregation time and are not part of the durable record.
type Review struct {
	ID          ReviewID      `json:"reviewId"`
	MovieID     model.MovieID `json:"movieId"`
	AuthorID    UserID        `json:"authorId"`
	DisplayName string        `json:"displayName,omitempty"`
	AvatarRef   string        `json:"avatarRef,omitempty"`
	Rating      float64       `json:"rating"`
	Comment     string        `json:"comment"`
	PosterRef   string        `json:"posterRef,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Identity is the resolved display identity of a review author.
type Identity struct {
	UserID      UserID `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef,omitempty"`
}

// AggregatedReviews is the per-movie review view with resolved identities.
type AggregatedReviews struct {
	MovieID       model.MovieID `json:"movieId"`
	Reviews       []Review      `json:"reviews"`
	AverageRating float64       `json:"averageRating"`
}

type ReviewEvent struct {
	Review
	EventType ReviewEventType `json:"eventType"`
}

type ReviewEventType string

const (
	ReviewEventTypePut = ReviewEventType("put")
)
