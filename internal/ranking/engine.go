// Package ranking produces ordered film listings from the enriched catalog.
package ranking

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/filmrate/backend/internal/apperr"
	"github.com/filmrate/backend/internal/logging"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/repositories"
)

// Sort keys accepted by FilmsByDirector.
const (
	SortKeyYear  = "year"
	SortKeyLikes = "likes"
)

// FilmSource loads enriched films.
type FilmSource interface {
	ListFilms(ctx context.Context) ([]models.Film, error)
	Films(ctx context.Context, ids []int64) ([]models.Film, error)
}

// Lookups is the slice of the store the engine reads directly.
type Lookups interface {
	FindUser(ctx context.Context, id int64) (models.User, error)
	UserLikes(ctx context.Context, userID int64) ([]int64, error)
	Director(ctx context.Context, id int64) (models.Director, error)
	FilmIDsByDirector(ctx context.Context, directorID int64) ([]int64, error)
}

// Engine answers popularity, filter, director, search and common-film queries.
type Engine struct {
	films FilmSource
	store Lookups
}

// NewEngine constructs a ranking engine.
func NewEngine(films FilmSource, store Lookups) *Engine {
	return &Engine{films: films, store: store}
}

// ByLikes orders films by like count descending, then by ascending id.
func ByLikes(a, b models.Film) int {
	return cmp.Or(cmp.Compare(len(b.Likes), len(a.Likes)), cmp.Compare(a.ID, b.ID))
}

func byReleaseDate(a, b models.Film) int {
	return cmp.Or(a.ReleaseDate.Compare(b.ReleaseDate), cmp.Compare(a.ID, b.ID))
}

// SortByLikes sorts films in place with ByLikes and returns them.
func SortByLikes(films []models.Film) []models.Film {
	slices.SortStableFunc(films, ByLikes)
	return films
}

func truncate(films []models.Film, count int) []models.Film {
	if count <= 0 {
		return []models.Film{}
	}
	if len(films) > count {
		return films[:count]
	}
	return films
}

func filter(films []models.Film, keep func(models.Film) bool) []models.Film {
	out := make([]models.Film, 0, len(films))
	for _, film := range films {
		if keep(film) {
			out = append(out, film)
		}
	}
	return out
}

func releasedIn(year int) func(models.Film) bool {
	return func(f models.Film) bool { return f.ReleaseDate.Year() == year }
}

func hasGenre(genreID int64) func(models.Film) bool {
	return func(f models.Film) bool {
		return slices.ContainsFunc(f.Genres, func(g models.Genre) bool { return g.ID == genreID })
	}
}

func (e *Engine) ranked(ctx context.Context, name string, keep func(models.Film) bool, attrs ...any) (_ []models.Film, err error) {
	ctx, span := logging.StartSpan(ctx, name, attrs...)
	defer func() {
		span.Fail(err)
		span.End()
	}()

	films, err := e.films.ListFilms(ctx)
	if err != nil {
		return nil, err
	}
	if keep != nil {
		films = filter(films, keep)
	}
	return SortByLikes(films), nil
}

// TopFilms returns the count most liked films. A non-positive count yields an
// empty result.
func (e *Engine) TopFilms(ctx context.Context, count int) ([]models.Film, error) {
	if count <= 0 {
		return []models.Film{}, nil
	}
	films, err := e.ranked(ctx, "ranking.top", nil, "count", count)
	if err != nil {
		return nil, err
	}
	return truncate(films, count), nil
}

// FilmsByYear returns the films released in year, most liked first.
func (e *Engine) FilmsByYear(ctx context.Context, year int) ([]models.Film, error) {
	return e.ranked(ctx, "ranking.by_year", releasedIn(year), "year", year)
}

// FilmsByGenre returns the films linked to genreID, most liked first.
func (e *Engine) FilmsByGenre(ctx context.Context, genreID int64) ([]models.Film, error) {
	return e.ranked(ctx, "ranking.by_genre", hasGenre(genreID), "genre_id", genreID)
}

// FilmsByYearAndGenre combines the year and genre filters.
func (e *Engine) FilmsByYearAndGenre(ctx context.Context, year int, genreID int64) ([]models.Film, error) {
	inYear, inGenre := releasedIn(year), hasGenre(genreID)
	return e.ranked(ctx, "ranking.by_year_genre", func(f models.Film) bool {
		return inYear(f) && inGenre(f)
	}, "year", year, "genre_id", genreID)
}

// Popular returns up to count films, optionally restricted to a release year
// and a genre.
func (e *Engine) Popular(ctx context.Context, count int, year *int, genreID *int64) ([]models.Film, error) {
	if count <= 0 {
		return []models.Film{}, nil
	}

	var (
		films []models.Film
		err   error
	)
	switch {
	case year != nil && genreID != nil:
		films, err = e.FilmsByYearAndGenre(ctx, *year, *genreID)
	case year != nil:
		films, err = e.FilmsByYear(ctx, *year)
	case genreID != nil:
		films, err = e.FilmsByGenre(ctx, *genreID)
	default:
		return e.TopFilms(ctx, count)
	}
	if err != nil {
		return nil, err
	}
	return truncate(films, count), nil
}

// FilmsByDirector lists a director's films ordered by sortKey, which is
// SortKeyYear or SortKeyLikes. An empty key means SortKeyLikes.
func (e *Engine) FilmsByDirector(ctx context.Context, directorID int64, sortKey string) (_ []models.Film, err error) {
	var order func(a, b models.Film) int
	switch strings.ToLower(strings.TrimSpace(sortKey)) {
	case "", SortKeyLikes:
		order = ByLikes
	case SortKeyYear:
		order = byReleaseDate
	default:
		return nil, apperr.Validation("unknown sort key %q", sortKey)
	}

	ctx, span := logging.StartSpan(ctx, "ranking.by_director", "director_id", directorID, "sort", sortKey)
	defer func() {
		span.Fail(err)
		span.End()
	}()

	if _, err := e.store.Director(ctx, directorID); err != nil {
		return nil, repositories.Translate(err, "director %d", directorID)
	}
	ids, err := e.store.FilmIDsByDirector(ctx, directorID)
	if err != nil {
		return nil, repositories.Translate(err, "films of director %d", directorID)
	}
	films, err := e.films.Films(ctx, ids)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(films, order)
	return films, nil
}

type searchFields struct {
	title    bool
	director bool
}

// parseSearchFields accepts "title", "director" or both separated by a comma.
func parseSearchFields(raw string) (searchFields, error) {
	var fields searchFields
	parts := strings.Split(raw, ",")
	if len(parts) > 2 {
		return fields, apperr.InvalidArgument("unsupported search fields %q", raw)
	}
	for _, part := range parts {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "title":
			if fields.title {
				return fields, apperr.InvalidArgument("unsupported search fields %q", raw)
			}
			fields.title = true
		case "director":
			if fields.director {
				return fields, apperr.InvalidArgument("unsupported search fields %q", raw)
			}
			fields.director = true
		default:
			return fields, apperr.InvalidArgument("unsupported search fields %q", raw)
		}
	}
	return fields, nil
}

func (f searchFields) matches(film models.Film, query string) bool {
	if f.title && strings.Contains(strings.ToLower(film.Title), query) {
		return true
	}
	if f.director {
		return slices.ContainsFunc(film.Directors, func(d models.Director) bool {
			return strings.Contains(strings.ToLower(d.Name), query)
		})
	}
	return false
}

// Search matches query case-insensitively against the title, the director
// names, or either of them, depending on fields.
func (e *Engine) Search(ctx context.Context, query, fields string) ([]models.Film, error) {
	parsed, err := parseSearchFields(fields)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	return e.ranked(ctx, "ranking.search", func(f models.Film) bool {
		return parsed.matches(f, needle)
	}, "query", query, "fields", fields)
}

// CommonFilms returns the films liked by both users, most liked first.
func (e *Engine) CommonFilms(ctx context.Context, userID, friendID int64) (_ []models.Film, err error) {
	ctx, span := logging.StartSpan(ctx, "ranking.common", "user_id", userID, "friend_id", friendID)
	defer func() {
		span.Fail(err)
		span.End()
	}()

	var likeSets [2][]int64
	for i, id := range []int64{userID, friendID} {
		if _, err := e.store.FindUser(ctx, id); err != nil {
			return nil, repositories.Translate(err, "user %d", id)
		}
		likes, err := e.store.UserLikes(ctx, id)
		if err != nil {
			return nil, repositories.Translate(err, "likes of user %d", id)
		}
		likeSets[i] = likes
	}

	common := make([]int64, 0, min(len(likeSets[0]), len(likeSets[1])))
	for _, id := range likeSets[0] {
		if _, found := slices.BinarySearch(likeSets[1], id); found {
			common = append(common, id)
		}
	}

	films, err := e.films.Films(ctx, common)
	if err != nil {
		return nil, err
	}
	return SortByLikes(films), nil
}
