package repositories

import (
	"context"

	"github.com/filmrate/backend/internal/models"
)

// FilmRepository defines data access for film rows and their reference links.
//
// Films returned by FindFilm and ListFilms carry only the MPA id; genres,
// directors and likes are loaded separately.
type FilmRepository interface {
	CreateFilm(ctx context.Context, film models.Film) (int64, error)
	UpdateFilm(ctx context.Context, film models.Film) error
	DeleteFilm(ctx context.Context, id int64) error
	FindFilm(ctx context.Context, id int64) (models.Film, error)
	ListFilms(ctx context.Context) ([]models.Film, error)
	FilmGenreIDs(ctx context.Context, filmID int64) ([]int64, error)
	ReplaceFilmGenres(ctx context.Context, filmID int64, genreIDs []int64) error
	FilmDirectorIDs(ctx context.Context, filmID int64) ([]int64, error)
	ReplaceFilmDirectors(ctx context.Context, filmID int64, directorIDs []int64) error
	FilmIDsByDirector(ctx context.Context, directorID int64) ([]int64, error)
}
