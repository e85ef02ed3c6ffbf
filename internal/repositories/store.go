package repositories

import "context"

// Store is the full persistence capability used by the catalog services.
type Store interface {
	UserRepository
	FriendRepository
	FilmRepository
	LikeRepository
	ReferenceRepository
	ReviewRepository
	FeedRepository

	// InTx runs fn against a transactional view of the store. Every write made
	// through that view is applied if fn returns nil and discarded otherwise.
	// Calling InTx on a transactional view runs fn in the same transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}
