// Package social manages users and the directional friendship graph between them.
package social

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/filmrate/backend/internal/apperr"
	"github.com/filmrate/backend/internal/feed"
	"github.com/filmrate/backend/internal/logging"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/repositories"
	"github.com/filmrate/backend/internal/validation"
)

// Service implements user lifecycle and friendship operations.
type Service struct {
	store repositories.Store
	feed  *feed.Recorder
}

// NewService constructs a social graph service.
func NewService(store repositories.Store, recorder *feed.Recorder) *Service {
	return &Service{store: store, feed: recorder}
}

func normalizeUser(user models.User) models.User {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
	user.FriendIDs = nil
	return user
}

// CreateUser validates and stores a new user. The display name defaults to the login.
func (s *Service) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user = normalizeUser(user)
	if err := validation.Struct(user); err != nil {
		return models.User{}, err
	}

	id, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, repositories.Translate(err, "create user %s", user.Email)
	}

	logging.FromContext(ctx).Info("user created", "user_id", id)
	return s.FindUser(ctx, id)
}

// UpdateUser replaces an existing user.
func (s *Service) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	user = normalizeUser(user)
	if err := validation.Struct(user); err != nil {
		return models.User{}, err
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return models.User{}, repositories.Translate(err, "update user %d", user.ID)
	}

	logging.FromContext(ctx).Info("user updated", "user_id", user.ID)
	return s.FindUser(ctx, user.ID)
}

// DeleteUser removes a user and everything that belongs to it.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return repositories.Translate(err, "delete user %d", id)
	}
	logging.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

// FindUser returns a user with its outbound friend ids.
func (s *Service) FindUser(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.FindUser(ctx, id)
	if err != nil {
		return models.User{}, repositories.Translate(err, "user %d", id)
	}
	return s.withFriends(ctx, user)
}

// ListUsers returns every user ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, repositories.Translate(err, "list users")
	}
	out := make([]models.User, 0, len(users))
	for _, user := range users {
		enriched, err := s.withFriends(ctx, user)
		if err != nil {
			return nil, err
		}
		out = append(out, enriched)
	}
	return out, nil
}

func (s *Service) withFriends(ctx context.Context, user models.User) (models.User, error) {
	ids, err := s.store.FriendIDs(ctx, user.ID)
	if err != nil {
		return models.User{}, repositories.Translate(err, "friends of user %d", user.ID)
	}
	if ids == nil {
		ids = []int64{}
	}
	user.FriendIDs = ids
	return user, nil
}

// AddFriend creates the edge userID -> friendID. Adding an existing edge is a
// no-op for the graph, but every call records one FRIEND ADD event.
func (s *Service) AddFriend(ctx context.Context, userID, friendID int64) error {
	return s.changeFriendship(ctx, userID, friendID, models.OperationAdd)
}

// RemoveFriend deletes the edge userID -> friendID. Removing a missing edge is
// a no-op for the graph, but every call records one FRIEND REMOVE event.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	return s.changeFriendship(ctx, userID, friendID, models.OperationRemove)
}

func (s *Service) changeFriendship(ctx context.Context, userID, friendID int64, op models.Operation) error {
	if userID == friendID {
		return apperr.Validation("user %d cannot befriend themselves", userID)
	}

	err := s.store.InTx(ctx, func(tx repositories.Store) error {
		if err := tx.LockUsers(ctx, userID, friendID); err != nil {
			return repositories.Translate(err, "users %d and %d", userID, friendID)
		}

		var err error
		if op == models.OperationAdd {
			_, err = tx.AddEdge(ctx, userID, friendID)
		} else {
			_, err = tx.RemoveEdge(ctx, userID, friendID)
		}
		if err != nil {
			return repositories.Translate(err, "friendship %d -> %d", userID, friendID)
		}

		if err := syncMutual(ctx, tx, userID, friendID); err != nil {
			return err
		}

		_, err = s.feed.In(tx).Record(ctx, userID, friendID, models.EventFriend, op)
		return err
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("friendship changed",
		"user_id", userID,
		"friend_id", friendID,
		"operation", string(op),
	)
	return nil
}

// syncMutual recomputes the mutual flag of both edges between a and b.
func syncMutual(ctx context.Context, tx repositories.Store, a, b int64) error {
	forward, err := hasEdge(ctx, tx, a, b)
	if err != nil {
		return err
	}
	backward, err := hasEdge(ctx, tx, b, a)
	if err != nil {
		return err
	}

	mutual := forward && backward
	if err := tx.SetMutual(ctx, a, b, mutual); err != nil {
		return repositories.Translate(err, "friendship %d -> %d", a, b)
	}
	if err := tx.SetMutual(ctx, b, a, mutual); err != nil {
		return repositories.Translate(err, "friendship %d -> %d", b, a)
	}
	return nil
}

func hasEdge(ctx context.Context, store repositories.Store, from, to int64) (bool, error) {
	_, err := store.FindEdge(ctx, from, to)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, repositories.Translate(err, "friendship %d -> %d", from, to)
	}
}

// Friendship returns the stored edge userID -> friendID with its mutual flag.
func (s *Service) Friendship(ctx context.Context, userID, friendID int64) (models.Friendship, error) {
	edge, err := s.store.FindEdge(ctx, userID, friendID)
	if err != nil {
		return models.Friendship{}, repositories.Translate(err, "friendship %d -> %d", userID, friendID)
	}
	return edge, nil
}

// IsMutual reports whether both users hold an edge to each other.
func (s *Service) IsMutual(ctx context.Context, userID, friendID int64) (bool, error) {
	edge, err := s.Friendship(ctx, userID, friendID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return edge.Mutual, nil
}

// Friends returns the users userID has an outbound edge to, ascending by id.
func (s *Service) Friends(ctx context.Context, userID int64) ([]models.User, error) {
	user, err := s.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.loadUsers(ctx, user.FriendIDs)
}

// CommonFriends returns the users both userID and otherID have an outbound edge to.
func (s *Service) CommonFriends(ctx context.Context, userID, otherID int64) ([]models.User, error) {
	user, err := s.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := s.FindUser(ctx, otherID)
	if err != nil {
		return nil, err
	}

	var common []int64
	for _, id := range user.FriendIDs {
		if _, found := slices.BinarySearch(other.FriendIDs, id); found {
			common = append(common, id)
		}
	}
	return s.loadUsers(ctx, common)
}

func (s *Service) loadUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.FindUser(ctx, id)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Feed returns the activity log of userID.
func (s *Service) Feed(ctx context.Context, userID int64) ([]models.FeedEvent, error) {
	return s.feed.FeedFor(ctx, userID)
}
