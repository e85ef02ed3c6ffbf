// Package validation checks catalog entities with go-playground/validator.
//
// A single validator instance is shared by every service; it caches struct
// metadata and is safe for concurrent use. Field errors are translated into
// short human messages and returned as an apperr validation error, so callers
// can branch with errors.Is(err, apperr.ErrValidation).
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/filmrate/backend/internal/apperr"
)

// EarliestReleaseDate is the date of the first public film screening.
var EarliestReleaseDate = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

// now is replaced in tests.
var now = time.Now

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors is the set of field errors produced by one validation pass.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Message)
	}
	return strings.Join(messages, "; ")
}

// Validator returns the shared validator with the catalog's custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		mustRegister(validate, "nonblank", nonBlank)
		mustRegister(validate, "nowhitespace", noWhitespace)
		mustRegister(validate, "notfuture", notFuture)
		mustRegister(validate, "releasedate", releaseDate)
	})
	return validate
}

// Struct validates every tagged field of s.
func Struct(s any) error {
	return translate(Validator().Struct(s))
}

// StructPartial validates only the named fields of s.
func StructPartial(s any, fields ...string) error {
	return translate(Validator().StructPartial(s, fields...))
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return apperr.Internal(err, "validate")
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindValidation, err, "validation failed")
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return apperr.Wrap(apperr.KindValidation, out, "validation failed")
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "nonblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "nowhitespace":
		return fmt.Sprintf("%s must not be blank or contain whitespace", field)
	case "notfuture":
		return fmt.Sprintf("%s must not be in the future", field)
	case "releasedate":
		return fmt.Sprintf("%s must not be before %s", field, EarliestReleaseDate.Format(time.DateOnly))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func nonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func noWhitespace(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	return strings.IndexFunc(value, unicode.IsSpace) < 0
}

func notFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.After(now())
}

func releaseDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.Before(EarliestReleaseDate)
}
