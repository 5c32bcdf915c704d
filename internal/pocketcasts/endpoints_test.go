package pocketcasts

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	path, err := endpoint("play_status")
	require.NoError(t, err)
	assert.Equal(t, "sync/update_episode", path)

	path, err = endpoint("share")
	require.NoError(t, err)
	assert.Equal(t, "podcasts/share_link", path)

	_, err = endpoint("rewind")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEndpoint))
	assert.Contains(t, err.Error(), "rewind")
}

func TestMakeURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://api.pocketcasts.com", "user/login", "https://api.pocketcasts.com/user/login"},
		{"https://api.pocketcasts.com/", "user/login", "https://api.pocketcasts.com/user/login"},
		{"https://api.pocketcasts.com", "/user/login", "https://api.pocketcasts.com/user/login"},
		{"https://api.pocketcasts.com//", "//user/login", "https://api.pocketcasts.com/user/login"},
		{"http://127.0.0.1:1234/catalogue", "podcast/full/p-1", "http://127.0.0.1:1234/catalogue/podcast/full/p-1"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, makeURL(tt.base, tt.path))
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		status int
		target error
		want   bool
	}{
		{http.StatusUnauthorized, ErrUnauthorized, true},
		{http.StatusForbidden, ErrUnauthorized, true},
		{http.StatusTooManyRequests, ErrRateLimited, true},
		{http.StatusNotFound, ErrNotFound, true},
		{http.StatusInternalServerError, ErrUnauthorized, false},
		{http.StatusInternalServerError, ErrNotFound, false},
	}

	for _, tt := range tests {
		err := error(NewAPIError("/user/episode", tt.status, "boom"))
		wrapped := errors.Join(errors.New("context"), err)
		assert.Equal(t, tt.want, errors.Is(wrapped, tt.target), "status %d vs %v", tt.status, tt.target)
	}

	assert.True(t, IsAPIError(NewAPIError("/x", 500, "")))
	assert.False(t, IsAPIError(ErrNotFound))
	assert.Equal(t, "pocketcasts API error (endpoint: /x, status: 500)", NewAPIError("/x", 500, "").Error())
}
