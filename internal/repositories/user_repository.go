package repositories

import (
	"context"

	"github.com/filmrate/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id int64) error
	FindUser(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// LockUsers serializes mutations touching the given users for the rest of the
	// enclosing transaction. It returns ErrNotFound if any user does not exist.
	LockUsers(ctx context.Context, ids ...int64) error
}
