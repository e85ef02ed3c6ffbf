// Package recommend suggests films liked by the user whose taste overlaps most
// with the subject's.
package recommend

import (
	"cmp"
	"context"
	"slices"

	"github.com/filmrate/backend/internal/logging"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/ranking"
	"github.com/filmrate/backend/internal/repositories"
)

// Store is the data the engine scans.
type Store interface {
	FindUser(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UserLikes(ctx context.Context, userID int64) ([]int64, error)
}

// Match is the neighbor chosen for a user. A zero UserID means no other user
// shares a like with the subject.
type Match struct {
	UserID  int64 `json:"userId"`
	Overlap int   `json:"overlap"`
}

// Engine computes recommendations on every call. Nothing is cached.
type Engine struct {
	films     ranking.FilmSource
	store     Store
	scanLimit int
}

// NewEngine constructs a recommendation engine. scanLimit bounds the number of
// candidate users examined per call; zero or less scans everyone.
func NewEngine(films ranking.FilmSource, store Store, scanLimit int) *Engine {
	return &Engine{films: films, store: store, scanLimit: scanLimit}
}

func overlap(a, b []int64) int {
	var n int
	for _, id := range a {
		if _, found := slices.BinarySearch(b, id); found {
			n++
		}
	}
	return n
}

// Neighbor returns the user sharing the most likes with userID. Candidates are
// scanned by ascending id, so ties resolve to the lowest id.
func (e *Engine) Neighbor(ctx context.Context, userID int64) (Match, error) {
	_, match, err := e.neighbor(ctx, userID)
	return match, err
}

func (e *Engine) neighbor(ctx context.Context, userID int64) ([]int64, Match, error) {
	if _, err := e.store.FindUser(ctx, userID); err != nil {
		return nil, Match{}, repositories.Translate(err, "user %d", userID)
	}
	subject, err := e.store.UserLikes(ctx, userID)
	if err != nil {
		return nil, Match{}, repositories.Translate(err, "likes of user %d", userID)
	}
	if len(subject) == 0 {
		return subject, Match{}, nil
	}

	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return nil, Match{}, repositories.Translate(err, "list users")
	}
	slices.SortFunc(users, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })

	var (
		best    Match
		scanned int
	)
	for _, user := range users {
		if user.ID == userID {
			continue
		}
		if e.scanLimit > 0 && scanned >= e.scanLimit {
			logging.FromContext(ctx).Debug("recommendation scan limit reached", "limit", e.scanLimit)
			break
		}
		scanned++

		likes, err := e.store.UserLikes(ctx, user.ID)
		if err != nil {
			return nil, Match{}, repositories.Translate(err, "likes of user %d", user.ID)
		}
		if n := overlap(subject, likes); n > best.Overlap {
			best = Match{UserID: user.ID, Overlap: n}
		}
	}
	return subject, best, nil
}

// Recommend returns the films the neighbor likes that userID has not liked,
// most liked first. The result is empty when there is no neighbor.
func (e *Engine) Recommend(ctx context.Context, userID int64) (_ []models.Film, err error) {
	ctx, span := logging.StartSpan(ctx, "recommend", "user_id", userID)
	defer func() {
		span.Fail(err)
		span.End()
	}()

	subject, match, err := e.neighbor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if match.UserID == 0 {
		return []models.Film{}, nil
	}

	likes, err := e.store.UserLikes(ctx, match.UserID)
	if err != nil {
		return nil, repositories.Translate(err, "likes of user %d", match.UserID)
	}
	candidates := slices.DeleteFunc(likes, func(id int64) bool {
		_, liked := slices.BinarySearch(subject, id)
		return liked
	})

	films, err := e.films.Films(ctx, candidates)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("recommendation computed",
		"neighbor_id", match.UserID,
		"overlap", match.Overlap,
		"films", len(films),
	)
	return ranking.SortByLikes(films), nil
}
