package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filmrate/backend/internal/cache"
	"github.com/filmrate/backend/internal/logging"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/repositories"
)

const (
	genresKey    = "genres:all"
	mpaKey       = "mpa:all"
	directorsKey = "directors:all"
)

func genreKey(id int64) string { return fmt.Sprintf("genre:%d", id) }
func mpaRatingKey(id int64) string { return fmt.Sprintf("mpa:%d", id) }
func directorKey(id int64) string { return fmt.Sprintf("director:%d", id) }

// CachingReferences serves genre, MPA and director lookups through a cache.
// Cache failures are logged and the lookup falls back to the store.
type CachingReferences struct {
	store repositories.ReferenceRepository
	cache cache.Cache
}

// NewCachingReferences wraps store with c.
func NewCachingReferences(store repositories.ReferenceRepository, c cache.Cache) *CachingReferences {
	return &CachingReferences{store: store, cache: c}
}

func cached[T any](ctx context.Context, c cache.Cache, key string, load func() (T, error)) (T, error) {
	logger := logging.FromContext(ctx)

	if raw, ok, err := c.Get(ctx, key); err != nil {
		logger.Warn("reference cache get failed", "key", key, "error", err)
	} else if ok {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
		logger.Warn("discarding undecodable cache entry", "key", key)
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := c.Set(ctx, key, raw); err != nil {
		logger.Warn("reference cache set failed", "key", key, "error", err)
	}
	return value, nil
}

// Genre returns one genre.
func (r *CachingReferences) Genre(ctx context.Context, id int64) (models.Genre, error) {
	return cached(ctx, r.cache, genreKey(id), func() (models.Genre, error) {
		return r.store.Genre(ctx, id)
	})
}

// Genres returns every genre ordered by id.
func (r *CachingReferences) Genres(ctx context.Context) ([]models.Genre, error) {
	return cached(ctx, r.cache, genresKey, func() ([]models.Genre, error) {
		return r.store.Genres(ctx)
	})
}

// Mpa returns one MPA rating.
func (r *CachingReferences) Mpa(ctx context.Context, id int64) (models.Mpa, error) {
	return cached(ctx, r.cache, mpaRatingKey(id), func() (models.Mpa, error) {
		return r.store.Mpa(ctx, id)
	})
}

// MpaRatings returns every MPA rating ordered by id.
func (r *CachingReferences) MpaRatings(ctx context.Context) ([]models.Mpa, error) {
	return cached(ctx, r.cache, mpaKey, func() ([]models.Mpa, error) {
		return r.store.MpaRatings(ctx)
	})
}

// Director returns one director.
func (r *CachingReferences) Director(ctx context.Context, id int64) (models.Director, error) {
	return cached(ctx, r.cache, directorKey(id), func() (models.Director, error) {
		return r.store.Director(ctx, id)
	})
}

// Directors returns every director ordered by id.
func (r *CachingReferences) Directors(ctx context.Context) ([]models.Director, error) {
	return cached(ctx, r.cache, directorsKey, func() ([]models.Director, error) {
		return r.store.Directors(ctx)
	})
}

// InvalidateDirector drops the cached entries a director write makes stale.
func (r *CachingReferences) InvalidateDirector(ctx context.Context, id int64) {
	if err := r.cache.Delete(ctx, directorKey(id), directorsKey); err != nil {
		logging.FromContext(ctx).Warn("reference cache invalidation failed", "director_id", id, "error", err)
	}
}
