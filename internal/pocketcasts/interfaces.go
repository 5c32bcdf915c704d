package pocketcasts

import "context"

// API is the transport an Episode or Podcast uses to reach Pocket Casts.
type API interface {
	APIBase() string
	PodcastAPIBase() string

	// Post sends body as JSON and reports whether the server accepted it
	Post(ctx context.Context, url string, body interface{}) error
	// PostJSON sends body as JSON and decodes the JSON response into out
	PostJSON(ctx context.Context, url string, body, out interface{}) error
	// GetJSON fetches url, optionally with the bearer token, into out
	GetJSON(ctx context.Context, url string, includeToken bool, out interface{}) error

	GetPodcastByID(ctx context.Context, id string) (*Podcast, error)
}

var _ API = (*Client)(nil)
