package repositories

import "context"

// LikeRepository defines data access for film likes.
type LikeRepository interface {
	AddLike(ctx context.Context, filmID, userID int64) (bool, error)
	RemoveLike(ctx context.Context, filmID, userID int64) (bool, error)
	// FilmLikes lists the users who like filmID, ascending.
	FilmLikes(ctx context.Context, filmID int64) ([]int64, error)
	// UserLikes lists the films userID likes, ascending.
	UserLikes(ctx context.Context, userID int64) ([]int64, error)
}
