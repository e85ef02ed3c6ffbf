package repositories

import (
	"context"

	"github.com/filmrate/backend/internal/models"
)

// FriendRepository defines data access for directional friendship edges.
type FriendRepository interface {
	// AddEdge inserts userID -> friendID and reports whether the edge was new.
	AddEdge(ctx context.Context, userID, friendID int64) (bool, error)
	// RemoveEdge deletes userID -> friendID and reports whether it existed.
	RemoveEdge(ctx context.Context, userID, friendID int64) (bool, error)
	// SetMutual updates the mutual flag of an existing edge; missing edges are ignored.
	SetMutual(ctx context.Context, userID, friendID int64, mutual bool) error
	FindEdge(ctx context.Context, userID, friendID int64) (models.Friendship, error)
	// FriendIDs lists the targets of userID's outbound edges in ascending order.
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
}
