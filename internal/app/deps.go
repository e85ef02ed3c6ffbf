package app

import (
	"context"
	"errors"

	"github.com/filmrate/backend/internal/cache"
	"github.com/filmrate/backend/internal/catalog"
	"github.com/filmrate/backend/internal/config"
	"github.com/filmrate/backend/internal/db"
	"github.com/filmrate/backend/internal/feed"
	"github.com/filmrate/backend/internal/ranking"
	"github.com/filmrate/backend/internal/recommend"
	"github.com/filmrate/backend/internal/repositories"
	"github.com/filmrate/backend/internal/reviews"
	"github.com/filmrate/backend/internal/social"
)

const redisKeyPrefix = "filmrate:"

// Services groups the domain services exposed to callers.
type Services struct {
	Store     repositories.Store
	Feed      *feed.Recorder
	Social    *social.Service
	Catalog   *catalog.Service
	Reviews   *reviews.Service
	Ranking   *ranking.Engine
	Recommend *recommend.Engine
}

// buildDependencies wires together the concrete store, cache and services.
// pool is only consulted for the postgres store. The returned cleanup releases
// resources opened here; it never closes pool.
func buildDependencies(ctx context.Context, cfg config.Config, pool db.Pool) (Services, func(), error) {
	var store repositories.Store
	switch cfg.Store {
	case config.StoreMemory:
		store = repositories.NewMemoryStore()
	default:
		if pool == nil {
			return Services{}, nil, errors.New("postgres store requires a database pool")
		}
		store = repositories.NewPostgresStore(pool, db.RetryPolicy{MaxRetries: cfg.TxMaxRetries})
	}

	cleanup := func() {}
	var refCache cache.Cache = cache.NewMemory(cfg.ReferenceCacheTTL)
	if cfg.RedisAddr != "" {
		client, err := cache.ConnectRedis(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return Services{}, nil, err
		}
		refCache = cache.NewRedis(client, redisKeyPrefix, cfg.ReferenceCacheTTL)
		cleanup = func() { _ = client.Close() }
	}

	recorder := feed.NewRecorder(store, nil)
	refs := catalog.NewCachingReferences(store, refCache)
	films := catalog.NewService(store, refs, recorder)

	return Services{
		Store:     store,
		Feed:      recorder,
		Social:    social.NewService(store, recorder),
		Catalog:   films,
		Reviews:   reviews.NewService(store, recorder),
		Ranking:   ranking.NewEngine(films, store),
		Recommend: recommend.NewEngine(films, store, cfg.RecommendScanLimit),
	}, cleanup, nil
}
