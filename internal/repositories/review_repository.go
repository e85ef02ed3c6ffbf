package repositories

import (
	"context"

	"github.com/filmrate/backend/internal/models"
)

// ReviewRepository defines data access for reviews and their usefulness votes.
//
// Reviews are returned with Useful computed from the votes stored at read time.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review models.Review) (int64, error)
	// UpdateReview replaces the content and polarity of a review.
	UpdateReview(ctx context.Context, review models.Review) error
	DeleteReview(ctx context.Context, id int64) error
	FindReview(ctx context.Context, id int64) (models.Review, error)
	// ListReviews returns every review, or only those of filmID when it is non-nil.
	ListReviews(ctx context.Context, filmID *int64) ([]models.Review, error)
	UpsertVote(ctx context.Context, vote models.ReviewVote) error
	// DeleteVote removes the vote only if it has the given polarity.
	DeleteVote(ctx context.Context, vote models.ReviewVote) (bool, error)
}
