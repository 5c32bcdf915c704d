package episodes

import (
	"errors"
	"fmt"

	"github.com/killallgit/castsync/internal/pocketcasts"
)

// ErrInvalidInput matches every ValidationError
var ErrInvalidInput = errors.New("invalid input")

// NotFoundError reports an episode missing upstream or from the library.
// It matches pocketcasts.ErrNotFound, so one errors.Is check covers both.
type NotFoundError struct {
	UUID   string
	Source string // "Pocket Casts" or "library"
	Cause  error
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("episode %s not found in %s", e.UUID, e.Source)
}

func (e NotFoundError) Is(target error) bool {
	return target == pocketcasts.ErrNotFound
}

func (e NotFoundError) Unwrap() error {
	return e.Cause
}

// ValidationError rejects a request before anything is sent upstream
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func NewNotFoundError(uuid, source string, cause error) error {
	return NotFoundError{UUID: uuid, Source: source, Cause: cause}
}

func NewValidationError(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// IsNotFound reports whether err means the episode does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, pocketcasts.ErrNotFound)
}

// IsValidation reports whether err rejected caller input, including the
// progress checks the episode model does itself
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, pocketcasts.ErrInvalidProgress) ||
		errors.Is(err, pocketcasts.ErrProgressExceedsDuration)
}
