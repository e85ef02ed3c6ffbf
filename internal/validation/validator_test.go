package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/filmrate/backend/internal/apperr"
	"github.com/filmrate/backend/internal/models"
)

func validFilm() models.Film {
	return models.Film{
		Title:       "Nosferatu",
		Description: "A symphony of horror",
		ReleaseDate: time.Date(1922, time.March, 4, 0, 0, 0, 0, time.UTC),
		Duration:    94,
		Mpa:         &models.Mpa{ID: 1},
	}
}

func TestStructFilm(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Film)
		wantTag string
	}{
		{name: "valid", mutate: func(*models.Film) {}},
		{name: "blank title", mutate: func(f *models.Film) { f.Title = "   " }, wantTag: "nonblank"},
		{name: "long description", mutate: func(f *models.Film) { f.Description = strings.Repeat("a", 201) }, wantTag: "max"},
		{name: "description at limit", mutate: func(f *models.Film) { f.Description = strings.Repeat("ж", 200) }},
		{name: "too early", mutate: func(f *models.Film) { f.ReleaseDate = EarliestReleaseDate.AddDate(0, 0, -1) }, wantTag: "releasedate"},
		{name: "first screening", mutate: func(f *models.Film) { f.ReleaseDate = EarliestReleaseDate }},
		{name: "negative duration", mutate: func(f *models.Film) { f.Duration = -1 }, wantTag: "min"},
		{name: "missing mpa", mutate: func(f *models.Film) { f.Mpa = nil }, wantTag: "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			film := validFilm()
			tt.mutate(&film)

			err := Struct(film)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error got %v", err)
			}
			var fieldErrs Errors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("expected field errors got %T", err)
			}
			if len(fieldErrs) != 1 || fieldErrs[0].Tag != tt.wantTag {
				t.Fatalf("expected single %q error got %+v", tt.wantTag, fieldErrs)
			}
		})
	}
}

func TestStructUser(t *testing.T) {
	fixed := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	user := models.User{Email: "neo@example.com", Login: "neo", Birthday: fixed}
	if err := Struct(user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := user
	bad.Login = "the one"
	bad.Email = "not-an-email"
	bad.Birthday = fixed.Add(time.Hour)

	err := Struct(bad)
	var fieldErrs Errors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected field errors got %v", err)
	}
	if len(fieldErrs) != 3 {
		t.Fatalf("expected 3 field errors got %+v", fieldErrs)
	}
	if !strings.Contains(err.Error(), "login must not be blank or contain whitespace") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestStructPartial(t *testing.T) {
	review := models.Review{Content: "Great"}
	if err := StructPartial(review, "Content"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := StructPartial(review, "Content", "IsPositive"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for missing polarity got %v", err)
	}
}
