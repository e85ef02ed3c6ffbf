package catalog

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/filmrate/backend/internal/apperr"
	"github.com/filmrate/backend/internal/cache"
	"github.com/filmrate/backend/internal/feed"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/repositories"
)

func newTestService(t *testing.T) (*Service, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	refs := NewCachingReferences(store, cache.NewMemory(time.Minute))
	return NewService(store, refs, feed.NewRecorder(store, nil)), store
}

func sampleFilm(title string) models.Film {
	return models.Film{
		Title:       title,
		Description: "description",
		ReleaseDate: time.Date(1999, time.March, 31, 0, 0, 0, 0, time.UTC),
		Duration:    136,
		Mpa:         &models.Mpa{ID: 4},
	}
}

func createUser(t *testing.T, store *repositories.MemoryStore, login string) int64 {
	t.Helper()
	id, err := store.CreateUser(context.Background(), models.User{Email: login + "@example.com", Login: login, Name: login})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestCreateFilmEnrichesReferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	director, err := svc.CreateDirector(ctx, models.Director{Name: "Lana Wachowski"})
	if err != nil {
		t.Fatalf("create director: %v", err)
	}

	film := sampleFilm("The Matrix")
	film.Genres = []models.Genre{{ID: 6}, {ID: 4}, {ID: 6}}
	film.Directors = []models.Director{{ID: director.ID}}

	created, err := svc.CreateFilm(ctx, film)
	if err != nil {
		t.Fatalf("create film: %v", err)
	}

	if created.Mpa == nil || created.Mpa.Name != "R" {
		t.Fatalf("expected resolved mpa got %+v", created.Mpa)
	}
	wantGenres := []models.Genre{{ID: 4, Name: "Thriller"}, {ID: 6, Name: "Action"}}
	if !slices.Equal(created.Genres, wantGenres) {
		t.Fatalf("expected sorted deduplicated genres %v got %v", wantGenres, created.Genres)
	}
	if len(created.Directors) != 1 || created.Directors[0].Name != "Lana Wachowski" {
		t.Fatalf("unexpected directors %+v", created.Directors)
	}
	if created.Likes == nil || len(created.Likes) != 0 {
		t.Fatalf("expected empty likes got %v", created.Likes)
	}
}

func TestCreateFilmRejectsInvalidInput(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.Film)
	}{
		{name: "blank title", mutate: func(f *models.Film) { f.Title = "" }},
		{name: "before cinema", mutate: func(f *models.Film) { f.ReleaseDate = time.Date(1895, time.December, 27, 0, 0, 0, 0, time.UTC) }},
		{name: "negative duration", mutate: func(f *models.Film) { f.Duration = -5 }},
		{name: "unknown mpa", mutate: func(f *models.Film) { f.Mpa = &models.Mpa{ID: 77} }},
		{name: "unknown genre", mutate: func(f *models.Film) { f.Genres = []models.Genre{{ID: 1}, {ID: 404}} }},
		{name: "unknown director", mutate: func(f *models.Film) { f.Directors = []models.Director{{ID: 404}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			film := sampleFilm("Broken")
			tt.mutate(&film)
			if _, err := svc.CreateFilm(ctx, film); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error got %v", err)
			}
		})
	}

	films, err := store.ListFilms(ctx)
	if err != nil {
		t.Fatalf("list films: %v", err)
	}
	if len(films) != 0 {
		t.Fatalf("expected no partial writes got %+v", films)
	}
}

func TestUpdateFilmLinks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	film := sampleFilm("Alien")
	film.Genres = []models.Genre{{ID: 4}}
	created, err := svc.CreateFilm(ctx, film)
	if err != nil {
		t.Fatalf("create film: %v", err)
	}

	keep := created
	keep.Title = "Alien (Director's Cut)"
	keep.Genres = nil
	updated, err := svc.UpdateFilm(ctx, keep)
	if err != nil {
		t.Fatalf("update film: %v", err)
	}
	if updated.Title != keep.Title || len(updated.Genres) != 1 || updated.Genres[0].ID != 4 {
		t.Fatalf("expected title change with genres kept got %+v", updated)
	}

	replace := updated
	replace.Genres = []models.Genre{{ID: 2}, {ID: 1}}
	updated, err = svc.UpdateFilm(ctx, replace)
	if err != nil {
		t.Fatalf("update film: %v", err)
	}
	if !slices.Equal(genreIDs(updated.Genres), []int64{1, 2}) {
		t.Fatalf("expected replaced genres got %+v", updated.Genres)
	}

	cleared := updated
	cleared.Genres = []models.Genre{}
	updated, err = svc.UpdateFilm(ctx, cleared)
	if err != nil {
		t.Fatalf("update film: %v", err)
	}
	if len(updated.Genres) != 0 {
		t.Fatalf("expected cleared genres got %+v", updated.Genres)
	}

	missing := sampleFilm("Ghost")
	missing.ID = 999
	if _, err := svc.UpdateFilm(ctx, missing); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestLikesRecordFeedEvents(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "fan")

	film, err := svc.CreateFilm(ctx, sampleFilm("Solaris"))
	if err != nil {
		t.Fatalf("create film: %v", err)
	}

	if err := svc.AddLike(ctx, film.ID, user); err != nil {
		t.Fatalf("add like: %v", err)
	}
	if err := svc.AddLike(ctx, film.ID, user); err != nil {
		t.Fatalf("repeat like: %v", err)
	}
	loaded, err := svc.LoadFilm(ctx, film.ID)
	if err != nil {
		t.Fatalf("load film: %v", err)
	}
	if !slices.Equal(loaded.Likes, []int64{user}) {
		t.Fatalf("expected one like got %v", loaded.Likes)
	}

	if err := svc.RemoveLike(ctx, film.ID, user); err != nil {
		t.Fatalf("remove like: %v", err)
	}

	events, err := store.EventsFor(ctx, user)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	var ops []models.Operation
	for _, e := range events {
		if e.EventType != models.EventLike || e.EntityID != film.ID {
			t.Fatalf("unexpected event %+v", e)
		}
		ops = append(ops, e.Operation)
	}
	if !slices.Equal(ops, []models.Operation{models.OperationAdd, models.OperationAdd, models.OperationRemove}) {
		t.Fatalf("unexpected operations %v", ops)
	}

	if err := svc.AddLike(ctx, film.ID, 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown user got %v", err)
	}
	if err := svc.AddLike(ctx, 404, user); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown film got %v", err)
	}
	if events, _ := store.EventsFor(ctx, user); len(events) != 3 {
		t.Fatalf("expected failed likes to record nothing got %d events", len(events))
	}
}

func TestDeleteFilmCascades(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "critic")

	film, err := svc.CreateFilm(ctx, sampleFilm("Stalker"))
	if err != nil {
		t.Fatalf("create film: %v", err)
	}
	if err := svc.AddLike(ctx, film.ID, user); err != nil {
		t.Fatalf("add like: %v", err)
	}
	positive := true
	if _, err := store.CreateReview(ctx, models.Review{Content: "zone", FilmID: film.ID, UserID: user, IsPositive: &positive}); err != nil {
		t.Fatalf("create review: %v", err)
	}

	if err := svc.DeleteFilm(ctx, film.ID); err != nil {
		t.Fatalf("delete film: %v", err)
	}

	if _, err := svc.LoadFilm(ctx, film.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if likes, _ := store.UserLikes(ctx, user); len(likes) != 0 {
		t.Fatalf("expected likes removed got %v", likes)
	}
	if reviews, _ := store.ListReviews(ctx, &film.ID); len(reviews) != 0 {
		t.Fatalf("expected reviews removed got %v", reviews)
	}
}

type brokenGenres struct {
	repositories.ReferenceRepository
}

func (brokenGenres) Genre(context.Context, int64) (models.Genre, error) {
	return models.Genre{}, repositories.ErrNotFound
}

func TestLoadFilmMissingReferenceIsInternal(t *testing.T) {
	store := repositories.NewMemoryStore()
	refs := NewCachingReferences(brokenGenres{store}, cache.NewMemory(time.Minute))
	svc := NewService(store, refs, feed.NewRecorder(store, nil))
	ctx := context.Background()

	film := sampleFilm("Orphan")
	film.Genres = []models.Genre{{ID: 1}}
	if _, err := svc.CreateFilm(ctx, film); !errors.Is(err, apperr.ErrInternal) {
		t.Fatalf("expected internal error loading film with dangling genre got %v", err)
	}
}

func TestDirectorCacheInvalidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	director, err := svc.CreateDirector(ctx, models.Director{Name: "Andrei Tarkovsky"})
	if err != nil {
		t.Fatalf("create director: %v", err)
	}
	if _, err := svc.Director(ctx, director.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if all, _ := svc.Directors(ctx); len(all) != 1 {
		t.Fatalf("expected one director got %v", all)
	}

	if _, err := svc.UpdateDirector(ctx, models.Director{ID: director.ID, Name: "A. Tarkovsky"}); err != nil {
		t.Fatalf("update director: %v", err)
	}
	got, err := svc.Director(ctx, director.ID)
	if err != nil || got.Name != "A. Tarkovsky" {
		t.Fatalf("expected fresh director got %+v %v", got, err)
	}

	if _, err := svc.CreateDirector(ctx, models.Director{Name: "  "}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error got %v", err)
	}

	if err := svc.DeleteDirector(ctx, director.ID); err != nil {
		t.Fatalf("delete director: %v", err)
	}
	if _, err := svc.Director(ctx, director.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete got %v", err)
	}
	if all, _ := svc.Directors(ctx); len(all) != 0 {
		t.Fatalf("expected directors list invalidated got %v", all)
	}
}

func TestReferenceReads(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	genres, err := svc.Genres(ctx)
	if err != nil || len(genres) != 6 || genres[0].Name != "Comedy" {
		t.Fatalf("unexpected genres %v %v", genres, err)
	}
	ratings, err := svc.MpaRatings(ctx)
	if err != nil || len(ratings) != 5 || ratings[4].Name != "NC-17" {
		t.Fatalf("unexpected ratings %v %v", ratings, err)
	}
	if _, err := svc.Genre(ctx, 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if mpa, err := svc.Mpa(ctx, 3); err != nil || mpa.Name != "PG-13" {
		t.Fatalf("unexpected mpa %v %v", mpa, err)
	}
}

// vanishingFilms loses every film update while reporting the row as missing.
type vanishingFilms struct {
	repositories.Store
}

func (s vanishingFilms) InTx(ctx context.Context, fn func(repositories.Store) error) error {
	return s.Store.InTx(ctx, func(tx repositories.Store) error {
		return fn(vanishingFilms{tx})
	})
}

func (vanishingFilms) UpdateFilm(context.Context, models.Film) error {
	return repositories.ErrNotFound
}

func TestUpdateFilmLostRowIsInternal(t *testing.T) {
	store := repositories.NewMemoryStore()
	refs := NewCachingReferences(store, cache.NewMemory(time.Minute))
	ctx := context.Background()

	created, err := NewService(store, refs, feed.NewRecorder(store, nil)).CreateFilm(ctx, sampleFilm("Heat"))
	if err != nil {
		t.Fatalf("create film: %v", err)
	}

	broken := vanishingFilms{store}
	svc := NewService(broken, refs, feed.NewRecorder(broken, nil))
	created.Title = "Heat (1995)"
	_, err = svc.UpdateFilm(ctx, created)
	if !errors.Is(err, apperr.ErrInternal) || errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected internal error for update that lost its row got %v", err)
	}

	if _, err := svc.UpdateFilm(ctx, sampleFilm("Missing")); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown film got %v", err)
	}
}
