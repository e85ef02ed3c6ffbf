// Package reviews owns film reviews and the usefulness votes cast on them.
package reviews

import (
	"cmp"
	"context"
	"slices"

	"github.com/filmrate/backend/internal/feed"
	"github.com/filmrate/backend/internal/logging"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/repositories"
	"github.com/filmrate/backend/internal/validation"
)

// DefaultListCount is the number of reviews List returns when no count is given.
const DefaultListCount = 10

// Service implements the review lifecycle.
type Service struct {
	store repositories.Store
	feed  *feed.Recorder
}

// NewService constructs a review service.
func NewService(store repositories.Store, recorder *feed.Recorder) *Service {
	return &Service{store: store, feed: recorder}
}

// Create stores a review and records a REVIEW ADD event for its author.
func (s *Service) Create(ctx context.Context, review models.Review) (models.Review, error) {
	if err := validation.Struct(review); err != nil {
		return models.Review{}, err
	}

	var id int64
	err := s.store.InTx(ctx, func(tx repositories.Store) error {
		if err := tx.LockUsers(ctx, review.UserID); err != nil {
			return repositories.Translate(err, "user %d", review.UserID)
		}
		if _, err := tx.FindFilm(ctx, review.FilmID); err != nil {
			return repositories.Translate(err, "film %d", review.FilmID)
		}

		var err error
		id, err = tx.CreateReview(ctx, review)
		if err != nil {
			return repositories.Translate(err, "create review")
		}

		_, err = s.feed.In(tx).Record(ctx, review.UserID, id, models.EventReview, models.OperationAdd)
		return err
	})
	if err != nil {
		return models.Review{}, err
	}

	logging.FromContext(ctx).Info("review created", "review_id", id, "film_id", review.FilmID, "user_id", review.UserID)
	return s.Find(ctx, id)
}

// Update replaces the content and polarity of a review. The author and film
// are fixed at creation and ignored here.
func (s *Service) Update(ctx context.Context, review models.Review) (models.Review, error) {
	if err := validation.StructPartial(review, "Content", "IsPositive"); err != nil {
		return models.Review{}, err
	}

	err := s.store.InTx(ctx, func(tx repositories.Store) error {
		current, err := tx.FindReview(ctx, review.ID)
		if err != nil {
			return repositories.Translate(err, "review %d", review.ID)
		}
		if err := tx.LockUsers(ctx, current.UserID); err != nil {
			return repositories.Translate(err, "user %d", current.UserID)
		}

		current.Content = review.Content
		current.IsPositive = review.IsPositive
		if err := tx.UpdateReview(ctx, current); err != nil {
			return repositories.TranslateExisting(err, "update review %d", review.ID)
		}

		_, err = s.feed.In(tx).Record(ctx, current.UserID, current.ID, models.EventReview, models.OperationUpdate)
		return err
	})
	if err != nil {
		return models.Review{}, err
	}

	logging.FromContext(ctx).Info("review updated", "review_id", review.ID)
	return s.Find(ctx, review.ID)
}

// Delete removes a review with its votes and records a REVIEW REMOVE event.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx repositories.Store) error {
		current, err := tx.FindReview(ctx, id)
		if err != nil {
			return repositories.Translate(err, "review %d", id)
		}
		if err := tx.LockUsers(ctx, current.UserID); err != nil {
			return repositories.Translate(err, "user %d", current.UserID)
		}
		if err := tx.DeleteReview(ctx, id); err != nil {
			return repositories.Translate(err, "delete review %d", id)
		}

		_, err = s.feed.In(tx).Record(ctx, current.UserID, id, models.EventReview, models.OperationRemove)
		return err
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("review deleted", "review_id", id)
	return nil
}

// Find returns a review with usefulness computed from its current votes.
func (s *Service) Find(ctx context.Context, id int64) (models.Review, error) {
	review, err := s.store.FindReview(ctx, id)
	if err != nil {
		return models.Review{}, repositories.Translate(err, "review %d", id)
	}
	return review, nil
}

// List returns up to count reviews, all of them or only those of filmID, most
// useful first with ties broken by ascending id. A non-positive count means
// DefaultListCount.
func (s *Service) List(ctx context.Context, filmID *int64, count int) ([]models.Review, error) {
	if count <= 0 {
		count = DefaultListCount
	}
	if filmID != nil {
		if _, err := s.store.FindFilm(ctx, *filmID); err != nil {
			return nil, repositories.Translate(err, "film %d", *filmID)
		}
	}

	reviews, err := s.store.ListReviews(ctx, filmID)
	if err != nil {
		return nil, repositories.Translate(err, "list reviews")
	}

	slices.SortStableFunc(reviews, func(a, b models.Review) int {
		return cmp.Or(cmp.Compare(b.Useful, a.Useful), cmp.Compare(a.ID, b.ID))
	})
	if len(reviews) > count {
		reviews = reviews[:count]
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// AddVote records userID's opinion of a review's usefulness, replacing any
// earlier vote by the same user.
func (s *Service) AddVote(ctx context.Context, reviewID, userID int64, useful bool) error {
	return s.store.InTx(ctx, func(tx repositories.Store) error {
		if err := tx.LockUsers(ctx, userID); err != nil {
			return repositories.Translate(err, "user %d", userID)
		}
		if _, err := tx.FindReview(ctx, reviewID); err != nil {
			return repositories.Translate(err, "review %d", reviewID)
		}
		vote := models.ReviewVote{ReviewID: reviewID, UserID: userID, Useful: useful}
		return repositories.Translate(tx.UpsertVote(ctx, vote), "vote on review %d", reviewID)
	})
}

// RemoveVote withdraws userID's vote if it has the given polarity.
func (s *Service) RemoveVote(ctx context.Context, reviewID, userID int64, useful bool) error {
	return s.store.InTx(ctx, func(tx repositories.Store) error {
		if err := tx.LockUsers(ctx, userID); err != nil {
			return repositories.Translate(err, "user %d", userID)
		}
		if _, err := tx.FindReview(ctx, reviewID); err != nil {
			return repositories.Translate(err, "review %d", reviewID)
		}
		vote := models.ReviewVote{ReviewID: reviewID, UserID: userID, Useful: useful}
		_, err := tx.DeleteVote(ctx, vote)
		return repositories.Translate(err, "remove vote on review %d", reviewID)
	})
}
