package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmrate/backend/internal/config"
	"github.com/filmrate/backend/internal/repositories"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		Store:             config.StorePostgres,
		TxMaxRetries:      3,
		ReferenceCacheTTL: time.Minute,
	}

	deps, cleanup, err := buildDependencies(context.Background(), cfg, fakePool{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer cleanup()

	if _, ok := deps.Store.(*repositories.PostgresStore); !ok {
		t.Fatalf("expected postgres store got %T", deps.Store)
	}
	if deps.Feed == nil {
		t.Fatal("expected feed recorder to be configured")
	}
	if deps.Social == nil {
		t.Fatal("expected social service to be configured")
	}
	if deps.Catalog == nil {
		t.Fatal("expected catalog service to be configured")
	}
	if deps.Reviews == nil {
		t.Fatal("expected review service to be configured")
	}
	if deps.Ranking == nil {
		t.Fatal("expected ranking engine to be configured")
	}
	if deps.Recommend == nil {
		t.Fatal("expected recommendation engine to be configured")
	}
}

func TestBuildDependenciesMemoryStore(t *testing.T) {
	cfg := config.Config{Store: config.StoreMemory, ReferenceCacheTTL: time.Minute}

	deps, cleanup, err := buildDependencies(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if _, ok := deps.Store.(*repositories.MemoryStore); !ok {
		t.Fatalf("expected memory store got %T", deps.Store)
	}
	genres, err := deps.Catalog.Genres(context.Background())
	if err != nil {
		t.Fatalf("genres: %v", err)
	}
	if len(genres) != len(repositories.DefaultGenres) {
		t.Fatalf("expected seeded genres got %v", genres)
	}
}

func TestBuildDependenciesRequiresPool(t *testing.T) {
	cfg := config.Config{Store: config.StorePostgres}
	if _, _, err := buildDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error without a pool")
	}
}
