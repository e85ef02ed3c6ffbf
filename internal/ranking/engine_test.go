package ranking

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/filmrate/backend/internal/apperr"
	"github.com/filmrate/backend/internal/cache"
	"github.com/filmrate/backend/internal/catalog"
	"github.com/filmrate/backend/internal/feed"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/repositories"
)

type world struct {
	t       *testing.T
	engine  *Engine
	catalog *catalog.Service
	store   *repositories.MemoryStore
}

func newWorld(t *testing.T) *world {
	t.Helper()
	store := repositories.NewMemoryStore()
	refs := catalog.NewCachingReferences(store, cache.NewMemory(time.Minute))
	svc := catalog.NewService(store, refs, feed.NewRecorder(store, nil))
	return &world{t: t, engine: NewEngine(svc, store), catalog: svc, store: store}
}

func (w *world) user(login string) int64 {
	w.t.Helper()
	id, err := w.store.CreateUser(context.Background(), models.User{Email: login + "@example.com", Login: login, Name: login})
	if err != nil {
		w.t.Fatalf("create user: %v", err)
	}
	return id
}

func (w *world) director(name string) int64 {
	w.t.Helper()
	d, err := w.catalog.CreateDirector(context.Background(), models.Director{Name: name})
	if err != nil {
		w.t.Fatalf("create director: %v", err)
	}
	return d.ID
}

type filmSpec struct {
	title     string
	year      int
	genres    []int64
	directors []int64
}

func (w *world) film(spec filmSpec) int64 {
	w.t.Helper()
	film := models.Film{
		Title:       spec.title,
		ReleaseDate: time.Date(spec.year, time.June, 1, 0, 0, 0, 0, time.UTC),
		Duration:    100,
		Mpa:         &models.Mpa{ID: 1},
	}
	for _, id := range spec.genres {
		film.Genres = append(film.Genres, models.Genre{ID: id})
	}
	for _, id := range spec.directors {
		film.Directors = append(film.Directors, models.Director{ID: id})
	}
	created, err := w.catalog.CreateFilm(context.Background(), film)
	if err != nil {
		w.t.Fatalf("create film %s: %v", spec.title, err)
	}
	return created.ID
}

func (w *world) like(filmID int64, userIDs ...int64) {
	w.t.Helper()
	for _, userID := range userIDs {
		if err := w.catalog.AddLike(context.Background(), filmID, userID); err != nil {
			w.t.Fatalf("like: %v", err)
		}
	}
}

func ids(films []models.Film) []int64 {
	out := make([]int64, 0, len(films))
	for _, f := range films {
		out = append(out, f.ID)
	}
	return out
}

func TestTopFilms(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	u1, u2, u3 := w.user("u1"), w.user("u2"), w.user("u3")
	a := w.film(filmSpec{title: "A", year: 2001})
	b := w.film(filmSpec{title: "B", year: 2002})
	c := w.film(filmSpec{title: "C", year: 2003})
	d := w.film(filmSpec{title: "D", year: 2004})
	w.like(b, u1, u2)
	w.like(c, u1, u2, u3)
	w.like(d, u1, u2)

	for n := 0; n <= 5; n++ {
		films, err := w.engine.TopFilms(ctx, n)
		if err != nil {
			t.Fatalf("top %d: %v", n, err)
		}
		if films == nil || len(films) != min(n, 4) {
			t.Fatalf("top %d: expected %d films got %v", n, min(n, 4), films)
		}
		for i := 1; i < len(films); i++ {
			if len(films[i].Likes) > len(films[i-1].Likes) {
				t.Fatalf("top %d: like counts increase at %d: %v", n, i, ids(films))
			}
		}
	}

	films, err := w.engine.TopFilms(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if want := []int64{c, b, d, a}; !slices.Equal(ids(films), want) {
		t.Fatalf("expected ties broken by ascending id %v got %v", want, ids(films))
	}

	if films, _ := w.engine.TopFilms(ctx, -1); len(films) != 0 {
		t.Fatalf("expected empty result for negative count got %v", ids(films))
	}
}

func TestFilters(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	u1, u2 := w.user("u1"), w.user("u2")
	comedy99 := w.film(filmSpec{title: "comedy 99", year: 1999, genres: []int64{1}})
	drama99 := w.film(filmSpec{title: "drama 99", year: 1999, genres: []int64{2}})
	comedy05 := w.film(filmSpec{title: "comedy 05", year: 2005, genres: []int64{1, 2}})
	w.like(comedy05, u1, u2)
	w.like(drama99, u1)

	year, comedy := 1999, int64(1)
	tests := []struct {
		name  string
		count int
		year  *int
		genre *int64
		want  []int64
	}{
		{name: "no filter", count: 10, want: []int64{comedy05, drama99, comedy99}},
		{name: "year", count: 10, year: &year, want: []int64{drama99, comedy99}},
		{name: "genre", count: 10, genre: &comedy, want: []int64{comedy05, comedy99}},
		{name: "year and genre", count: 10, year: &year, genre: &comedy, want: []int64{comedy99}},
		{name: "truncated", count: 1, genre: &comedy, want: []int64{comedy05}},
		{name: "zero count", count: 0, year: &year, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			films, err := w.engine.Popular(ctx, tt.count, tt.year, tt.genre)
			if err != nil {
				t.Fatalf("popular: %v", err)
			}
			if !slices.Equal(ids(films), tt.want) {
				t.Fatalf("expected %v got %v", tt.want, ids(films))
			}
		})
	}

	films, err := w.engine.FilmsByGenre(ctx, 2)
	if err != nil {
		t.Fatalf("by genre: %v", err)
	}
	if want := []int64{comedy05, drama99}; !slices.Equal(ids(films), want) {
		t.Fatalf("expected %v got %v", want, ids(films))
	}
}

func TestFilmsByDirector(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	u1, u2 := w.user("u1"), w.user("u2")
	nolan := w.director("Christopher Nolan")
	other := w.director("Someone Else")
	late := w.film(filmSpec{title: "Tenet", year: 2020, directors: []int64{nolan}})
	early := w.film(filmSpec{title: "Memento", year: 2000, directors: []int64{nolan}})
	w.film(filmSpec{title: "Unrelated", year: 2010, directors: []int64{other}})
	w.like(late, u1, u2)

	tests := []struct {
		sortKey string
		want    []int64
	}{
		{sortKey: SortKeyYear, want: []int64{early, late}},
		{sortKey: SortKeyLikes, want: []int64{late, early}},
		{sortKey: " Year ", want: []int64{early, late}},
		{sortKey: "", want: []int64{late, early}},
	}
	for _, tt := range tests {
		films, err := w.engine.FilmsByDirector(ctx, nolan, tt.sortKey)
		if err != nil {
			t.Fatalf("sort %q: %v", tt.sortKey, err)
		}
		if !slices.Equal(ids(films), tt.want) {
			t.Fatalf("sort %q: expected %v got %v", tt.sortKey, tt.want, ids(films))
		}
	}

	if _, err := w.engine.FilmsByDirector(ctx, nolan, "rating"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for unknown sort got %v", err)
	}
	if _, err := w.engine.FilmsByDirector(ctx, 404, "year"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown director got %v", err)
	}
}

func TestSearch(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	u1 := w.user("u1")
	allers := w.director("Roger Allers")
	kingsley := w.director("Ben Kingsley")
	lionKing := w.film(filmSpec{title: "The Lion King", year: 1994, directors: []int64{allers}})
	byKingsley := w.film(filmSpec{title: "Quiet Evening", year: 2011, directors: []int64{kingsley}})
	w.film(filmSpec{title: "Nothing Here", year: 2012, directors: []int64{allers}})
	w.like(byKingsley, u1)

	tests := []struct {
		fields string
		want   []int64
	}{
		{fields: "title,director", want: []int64{byKingsley, lionKing}},
		{fields: "director, title", want: []int64{byKingsley, lionKing}},
		{fields: "title", want: []int64{lionKing}},
		{fields: "director", want: []int64{byKingsley}},
	}
	for _, tt := range tests {
		films, err := w.engine.Search(ctx, "KiNg", tt.fields)
		if err != nil {
			t.Fatalf("search %q: %v", tt.fields, err)
		}
		if !slices.Equal(ids(films), tt.want) {
			t.Fatalf("search %q: expected %v got %v", tt.fields, tt.want, ids(films))
		}
	}

	for _, fields := range []string{"", "genre", "title,title", "title,director,title"} {
		if _, err := w.engine.Search(ctx, "king", fields); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Fatalf("fields %q: expected invalid argument got %v", fields, err)
		}
	}
}

func TestCommonFilms(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	u1, u2, u3 := w.user("u1"), w.user("u2"), w.user("u3")
	a := w.film(filmSpec{title: "A", year: 2001})
	b := w.film(filmSpec{title: "B", year: 2002})
	c := w.film(filmSpec{title: "C", year: 2003})
	w.like(a, u1, u2)
	w.like(b, u1, u2, u3)
	w.like(c, u1)

	forward, err := w.engine.CommonFilms(ctx, u1, u2)
	if err != nil {
		t.Fatalf("common: %v", err)
	}
	backward, err := w.engine.CommonFilms(ctx, u2, u1)
	if err != nil {
		t.Fatalf("common: %v", err)
	}
	want := []int64{b, a}
	if !slices.Equal(ids(forward), want) || !slices.Equal(ids(backward), want) {
		t.Fatalf("expected %v both ways got %v and %v", want, ids(forward), ids(backward))
	}

	if _, err := w.engine.CommonFilms(ctx, u1, 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestSortByLikes(t *testing.T) {
	films := []models.Film{
		{ID: 3, Likes: []int64{1}},
		{ID: 1},
		{ID: 2, Likes: []int64{1}},
		{ID: 4, Likes: []int64{1, 2}},
	}
	if got, want := ids(SortByLikes(films)), []int64{4, 2, 3, 1}; !slices.Equal(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}
