package repositories

import (
	"context"

	"github.com/filmrate/backend/internal/models"
)

// ReferenceRepository defines data access for genres, MPA ratings and directors.
type ReferenceRepository interface {
	Genres(ctx context.Context) ([]models.Genre, error)
	Genre(ctx context.Context, id int64) (models.Genre, error)
	MpaRatings(ctx context.Context) ([]models.Mpa, error)
	Mpa(ctx context.Context, id int64) (models.Mpa, error)
	Directors(ctx context.Context) ([]models.Director, error)
	Director(ctx context.Context, id int64) (models.Director, error)
	CreateDirector(ctx context.Context, director models.Director) (int64, error)
	UpdateDirector(ctx context.Context, director models.Director) error
	DeleteDirector(ctx context.Context, id int64) error
}
