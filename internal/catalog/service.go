// Package catalog assembles films from their stored rows, reference data and
// likes, and owns the film, like and director lifecycles.
package catalog

import (
	"context"
	"errors"
	"slices"

	"github.com/filmrate/backend/internal/apperr"
	"github.com/filmrate/backend/internal/feed"
	"github.com/filmrate/backend/internal/logging"
	"github.com/filmrate/backend/internal/models"
	"github.com/filmrate/backend/internal/repositories"
	"github.com/filmrate/backend/internal/validation"
)

// Service implements film aggregation and catalog mutations.
type Service struct {
	store repositories.Store
	refs  *CachingReferences
	feed  *feed.Recorder
}

// NewService constructs a catalog service.
func NewService(store repositories.Store, refs *CachingReferences, recorder *feed.Recorder) *Service {
	return &Service{store: store, refs: refs, feed: recorder}
}

// LoadFilm returns a film with its MPA rating, genres, directors and likes.
func (s *Service) LoadFilm(ctx context.Context, id int64) (models.Film, error) {
	film, err := s.store.FindFilm(ctx, id)
	if err != nil {
		return models.Film{}, repositories.Translate(err, "film %d", id)
	}
	return s.enrich(ctx, film)
}

// ListFilms returns every film, enriched, ordered by id.
func (s *Service) ListFilms(ctx context.Context) ([]models.Film, error) {
	films, err := s.store.ListFilms(ctx)
	if err != nil {
		return nil, repositories.Translate(err, "list films")
	}
	return s.enrichAll(ctx, films)
}

// Films loads the given films in the order of ids.
func (s *Service) Films(ctx context.Context, ids []int64) ([]models.Film, error) {
	films := make([]models.Film, 0, len(ids))
	for _, id := range ids {
		film, err := s.LoadFilm(ctx, id)
		if err != nil {
			return nil, err
		}
		films = append(films, film)
	}
	return films, nil
}

func (s *Service) enrichAll(ctx context.Context, films []models.Film) ([]models.Film, error) {
	out := make([]models.Film, 0, len(films))
	for _, film := range films {
		enriched, err := s.enrich(ctx, film)
		if err != nil {
			return nil, err
		}
		out = append(out, enriched)
	}
	return out, nil
}

// missingReference reports a link whose target row is gone. Links are guarded
// by foreign keys, so this is a consistency failure rather than a user error.
func missingReference(ctx context.Context, err error, filmID int64, kind string, refID int64) error {
	if errors.Is(err, repositories.ErrNotFound) {
		logging.FromContext(ctx).Error("film references missing row",
			"film_id", filmID,
			"reference", kind,
			"reference_id", refID,
		)
		return apperr.Internal(err, "film %d references missing %s %d", filmID, kind, refID)
	}
	return repositories.Translate(err, "load %s %d", kind, refID)
}

func (s *Service) enrich(ctx context.Context, film models.Film) (models.Film, error) {
	if film.Mpa != nil {
		mpa, err := s.refs.Mpa(ctx, film.Mpa.ID)
		if err != nil {
			return models.Film{}, missingReference(ctx, err, film.ID, "mpa", film.Mpa.ID)
		}
		film.Mpa = &mpa
	}

	genreIDs, err := s.store.FilmGenreIDs(ctx, film.ID)
	if err != nil {
		return models.Film{}, repositories.Translate(err, "genres of film %d", film.ID)
	}
	film.Genres = make([]models.Genre, 0, len(genreIDs))
	for _, id := range genreIDs {
		genre, err := s.refs.Genre(ctx, id)
		if err != nil {
			return models.Film{}, missingReference(ctx, err, film.ID, "genre", id)
		}
		film.Genres = append(film.Genres, genre)
	}

	directorIDs, err := s.store.FilmDirectorIDs(ctx, film.ID)
	if err != nil {
		return models.Film{}, repositories.Translate(err, "directors of film %d", film.ID)
	}
	film.Directors = make([]models.Director, 0, len(directorIDs))
	for _, id := range directorIDs {
		director, err := s.refs.Director(ctx, id)
		if err != nil {
			return models.Film{}, missingReference(ctx, err, film.ID, "director", id)
		}
		film.Directors = append(film.Directors, director)
	}

	likes, err := s.store.FilmLikes(ctx, film.ID)
	if err != nil {
		return models.Film{}, repositories.Translate(err, "likes of film %d", film.ID)
	}
	if likes == nil {
		likes = []int64{}
	}
	film.Likes = likes

	return film, nil
}

func genreIDs(genres []models.Genre) []int64 {
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func directorIDs(directors []models.Director) []int64 {
	ids := make([]int64, 0, len(directors))
	for _, d := range directors {
		ids = append(ids, d.ID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// checkReferences verifies that every referenced MPA rating, genre and director exists.
func checkReferences(ctx context.Context, tx repositories.Store, film models.Film) error {
	if _, err := tx.Mpa(ctx, film.Mpa.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.Validation("unknown mpa rating %d", film.Mpa.ID)
		}
		return repositories.Translate(err, "mpa %d", film.Mpa.ID)
	}
	for _, id := range genreIDs(film.Genres) {
		if _, err := tx.Genre(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.Validation("unknown genre %d", id)
			}
			return repositories.Translate(err, "genre %d", id)
		}
	}
	for _, id := range directorIDs(film.Directors) {
		if _, err := tx.Director(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.Validation("unknown director %d", id)
			}
			return repositories.Translate(err, "director %d", id)
		}
	}
	return nil
}

// CreateFilm validates and stores a film with its genre and director links.
func (s *Service) CreateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	if err := validation.Struct(film); err != nil {
		return models.Film{}, err
	}

	var id int64
	err := s.store.InTx(ctx, func(tx repositories.Store) error {
		if err := checkReferences(ctx, tx, film); err != nil {
			return err
		}

		var err error
		id, err = tx.CreateFilm(ctx, film)
		if err != nil {
			return repositories.Translate(err, "create film")
		}
		if err := tx.ReplaceFilmGenres(ctx, id, genreIDs(film.Genres)); err != nil {
			return repositories.Translate(err, "link genres of film %d", id)
		}
		if err := tx.ReplaceFilmDirectors(ctx, id, directorIDs(film.Directors)); err != nil {
			return repositories.Translate(err, "link directors of film %d", id)
		}
		return nil
	})
	if err != nil {
		return models.Film{}, err
	}

	logging.FromContext(ctx).Info("film created", "film_id", id)
	return s.LoadFilm(ctx, id)
}

// UpdateFilm replaces a film's fields. A nil Genres or Directors slice keeps the
// stored links; any other value replaces them when the id set differs.
func (s *Service) UpdateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	if err := validation.Struct(film); err != nil {
		return models.Film{}, err
	}

	err := s.store.InTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindFilm(ctx, film.ID); err != nil {
			return repositories.Translate(err, "film %d", film.ID)
		}
		if err := checkReferences(ctx, tx, film); err != nil {
			return err
		}
		if err := tx.UpdateFilm(ctx, film); err != nil {
			return repositories.TranslateExisting(err, "update film %d", film.ID)
		}

		if film.Genres != nil {
			current, err := tx.FilmGenreIDs(ctx, film.ID)
			if err != nil {
				return repositories.Translate(err, "genres of film %d", film.ID)
			}
			if next := genreIDs(film.Genres); !slices.Equal(current, next) {
				if err := tx.ReplaceFilmGenres(ctx, film.ID, next); err != nil {
					return repositories.Translate(err, "link genres of film %d", film.ID)
				}
			}
		}

		if film.Directors != nil {
			current, err := tx.FilmDirectorIDs(ctx, film.ID)
			if err != nil {
				return repositories.Translate(err, "directors of film %d", film.ID)
			}
			if next := directorIDs(film.Directors); !slices.Equal(current, next) {
				if err := tx.ReplaceFilmDirectors(ctx, film.ID, next); err != nil {
					return repositories.Translate(err, "link directors of film %d", film.ID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.Film{}, err
	}

	logging.FromContext(ctx).Info("film updated", "film_id", film.ID)
	return s.LoadFilm(ctx, film.ID)
}

// DeleteFilm removes a film with its likes, links and reviews.
func (s *Service) DeleteFilm(ctx context.Context, id int64) error {
	if err := s.store.DeleteFilm(ctx, id); err != nil {
		return repositories.Translate(err, "delete film %d", id)
	}
	logging.FromContext(ctx).Info("film deleted", "film_id", id)
	return nil
}

// AddLike records that userID likes filmID and appends a LIKE ADD event.
func (s *Service) AddLike(ctx context.Context, filmID, userID int64) error {
	return s.changeLike(ctx, filmID, userID, models.OperationAdd)
}

// RemoveLike withdraws a like and appends a LIKE REMOVE event.
func (s *Service) RemoveLike(ctx context.Context, filmID, userID int64) error {
	return s.changeLike(ctx, filmID, userID, models.OperationRemove)
}

func (s *Service) changeLike(ctx context.Context, filmID, userID int64, op models.Operation) error {
	err := s.store.InTx(ctx, func(tx repositories.Store) error {
		if err := tx.LockUsers(ctx, userID); err != nil {
			return repositories.Translate(err, "user %d", userID)
		}
		if _, err := tx.FindFilm(ctx, filmID); err != nil {
			return repositories.Translate(err, "film %d", filmID)
		}

		var err error
		if op == models.OperationAdd {
			_, err = tx.AddLike(ctx, filmID, userID)
		} else {
			_, err = tx.RemoveLike(ctx, filmID, userID)
		}
		if err != nil {
			return repositories.Translate(err, "like of film %d by user %d", filmID, userID)
		}

		_, err = s.feed.In(tx).Record(ctx, userID, filmID, models.EventLike, op)
		return err
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("like changed", "film_id", filmID, "user_id", userID, "operation", string(op))
	return nil
}

// Genres returns every genre.
func (s *Service) Genres(ctx context.Context) ([]models.Genre, error) {
	genres, err := s.refs.Genres(ctx)
	return genres, repositories.Translate(err, "list genres")
}

// Genre returns one genre.
func (s *Service) Genre(ctx context.Context, id int64) (models.Genre, error) {
	genre, err := s.refs.Genre(ctx, id)
	return genre, repositories.Translate(err, "genre %d", id)
}

// MpaRatings returns every MPA rating.
func (s *Service) MpaRatings(ctx context.Context) ([]models.Mpa, error) {
	ratings, err := s.refs.MpaRatings(ctx)
	return ratings, repositories.Translate(err, "list mpa ratings")
}

// Mpa returns one MPA rating.
func (s *Service) Mpa(ctx context.Context, id int64) (models.Mpa, error) {
	rating, err := s.refs.Mpa(ctx, id)
	return rating, repositories.Translate(err, "mpa %d", id)
}

// Directors returns every director.
func (s *Service) Directors(ctx context.Context) ([]models.Director, error) {
	directors, err := s.refs.Directors(ctx)
	return directors, repositories.Translate(err, "list directors")
}

// Director returns one director.
func (s *Service) Director(ctx context.Context, id int64) (models.Director, error) {
	director, err := s.refs.Director(ctx, id)
	return director, repositories.Translate(err, "director %d", id)
}

// CreateDirector stores a new director.
func (s *Service) CreateDirector(ctx context.Context, director models.Director) (models.Director, error) {
	if err := validation.Struct(director); err != nil {
		return models.Director{}, err
	}
	id, err := s.store.CreateDirector(ctx, director)
	if err != nil {
		return models.Director{}, repositories.Translate(err, "create director")
	}
	s.refs.InvalidateDirector(ctx, id)
	director.ID = id
	return director, nil
}

// UpdateDirector renames an existing director.
func (s *Service) UpdateDirector(ctx context.Context, director models.Director) (models.Director, error) {
	if err := validation.Struct(director); err != nil {
		return models.Director{}, err
	}
	if err := s.store.UpdateDirector(ctx, director); err != nil {
		return models.Director{}, repositories.Translate(err, "update director %d", director.ID)
	}
	s.refs.InvalidateDirector(ctx, director.ID)
	return director, nil
}

// DeleteDirector removes a director and unlinks it from its films.
func (s *Service) DeleteDirector(ctx context.Context, id int64) error {
	if err := s.store.DeleteDirector(ctx, id); err != nil {
		return repositories.Translate(err, "delete director %d", id)
	}
	s.refs.InvalidateDirector(ctx, id)
	return nil
}
