package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_HTTPCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("episode", "e-1"), http.StatusNotFound},
		{"validation", ValidationError("position", "cannot be negative"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"rate limit", RateLimitError("pocketcasts", "10/s"), http.StatusTooManyRequests},
		{"timeout", Wrap(stderrors.New("deadline"), ErrCodeAPITimeout, "slow"), http.StatusGatewayTimeout},
		{"external", ExternalServiceError("pocketcasts", stderrors.New("boom")), http.StatusBadGateway},
		{"internal", New(ErrCodeInternal, "oops"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.GetHTTPCode())
		})
	}
}

func TestAppError_Wrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	appErr := ExternalServiceError("pocketcasts", cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "connection refused")
	assert.Equal(t, "pocketcasts", appErr.Details["service"])

	wrapped := fmt.Errorf("applying action: %w", appErr)
	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeExternalService, got.Code)
	assert.Equal(t, http.StatusBadGateway, got.GetHTTPCode())

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestAppError_WithCause(t *testing.T) {
	cause := stderrors.New("progress exceeds episode duration")
	e := ValidationError("position", "too far").WithCause(cause)

	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "position", e.Details["field"])
	assert.Contains(t, e.Error(), "caused by")
}

func TestAppError_ExplicitHTTPCode(t *testing.T) {
	e := New(ErrCodeInvalidInput, "bad list")
	e.HTTPCode = http.StatusUnprocessableEntity

	assert.Equal(t, "INVALID_INPUT: bad list", e.Error())
	assert.Equal(t, http.StatusUnprocessableEntity, e.GetHTTPCode())
}
