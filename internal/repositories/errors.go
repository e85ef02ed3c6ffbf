package repositories

import (
	"errors"

	"github.com/filmrate/backend/internal/apperr"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
)

// Translate maps storage errors onto application error kinds. Errors that already
// carry a kind pass through untouched.
func Translate(err error, format string, args ...any) error {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, err, format, args...)
	case errors.Is(err, ErrConflict):
		return apperr.Wrap(apperr.KindConflict, err, format, args...)
	default:
		return apperr.Wrap(apperr.KindInternal, err, format, args...)
	}
}

// TranslateExisting is Translate for writes against a row already read in the
// same transaction. A missing row there is a consistency failure, not a caller
// error, so ErrNotFound maps to an internal error.
func TranslateExisting(err error, format string, args ...any) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.Wrap(apperr.KindInternal, err, format, args...)
	}
	return Translate(err, format, args...)
}
