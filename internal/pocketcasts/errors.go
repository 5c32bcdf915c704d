package pocketcasts

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated is returned when a request needs a token and none is set
	ErrNotAuthenticated = errors.New("not authenticated: no API token set")
	// ErrUnauthorized matches APIErrors with status 401 or 403
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited matches APIErrors with status 429
	ErrRateLimited = errors.New("rate limited by Pocket Casts")
	// ErrNotFound matches APIErrors with status 404 and empty lookups
	ErrNotFound = errors.New("not found")
	// ErrNoPodcastID is returned when an episode carries no podcast reference
	ErrNoPodcastID = errors.New("episode has no podcast id")
	// ErrUnknownEndpoint is returned for action names without a path
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	// ErrProgressExceedsDuration rejects positions past the end of the episode
	ErrProgressExceedsDuration = errors.New("progress exceeds episode duration")
	// ErrInvalidProgress rejects negative positions
	ErrInvalidProgress = errors.New("progress must not be negative")
	// ErrNoAudioURL is returned when downloading an episode without a media url
	ErrNoAudioURL = errors.New("episode has no audio url")
	// ErrUnreachable wraps transport failures where Pocket Casts gave no answer
	ErrUnreachable = errors.New("pocketcasts unreachable")
)

// APIError represents a non-2xx response from Pocket Casts
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pocketcasts API error (endpoint: %s, status: %d)", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("pocketcasts API error (endpoint: %s, status: %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

// Is maps status codes onto the package sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// NewAPIError creates a new API error
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// IsAPIError reports whether err wraps an *APIError
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
