package pocketcasts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/killallgit/castsync/internal/services/cache"
)

const maxErrorBody = 1024

// Config holds configuration for the Pocket Casts client
type Config struct {
	APIBase        string // Default: https://api.pocketcasts.com
	PodcastAPIBase string // Default: https://podcast-api.pocketcasts.com
	Token          string
	UserAgent      string        // Default: castsync/1.0
	Timeout        time.Duration // Default: 15s

	// Rate limiting, <= 0 disables pacing
	RequestsPerSecond float64
	Burst             int

	// Podcast lookups are cached when Cache is set
	Cache           cache.Cache
	PodcastCacheTTL time.Duration // Default: 1h

	// HTTPClient overrides the client built from Timeout
	HTTPClient *http.Client
}

// Client handles communication with the Pocket Casts API
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	config      Config

	mu    sync.RWMutex
	token string

	metrics clientMetrics
}

type clientMetrics struct {
	requests    atomic.Int64
	errors      atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// Metrics is a snapshot of client usage
type Metrics struct {
	Requests    int64
	Errors      int64
	CacheHits   int64
	CacheMisses int64
}

// NewClient creates a new Pocket Casts API client
func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.PodcastAPIBase == "" {
		cfg.PodcastAPIBase = DefaultPodcastAPIBase
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "castsync/1.0"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.PodcastCacheTTL == 0 {
		cfg.PodcastCacheTTL = time.Hour
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(limit, cfg.Burst),
		config:      cfg,
		token:       cfg.Token,
	}
}

// APIBase returns the user API base URL
func (c *Client) APIBase() string {
	return c.config.APIBase
}

// PodcastAPIBase returns the podcast catalogue base URL
func (c *Client) PodcastAPIBase() string {
	return c.config.PodcastAPIBase
}

// SetToken replaces the bearer token used for authenticated requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token, "" when not logged in
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Metrics returns a snapshot of request and cache counters
func (c *Client) Metrics() Metrics {
	return Metrics{
		Requests:    c.metrics.requests.Load(),
		Errors:      c.metrics.errors.Load(),
		CacheHits:   c.metrics.cacheHits.Load(),
		CacheMisses: c.metrics.cacheMisses.Load(),
	}
}

// Post sends body as JSON with the bearer token
func (c *Client) Post(ctx context.Context, url string, body interface{}) error {
	return c.send(ctx, http.MethodPost, url, body, true, nil)
}

// PostJSON sends body as JSON with the bearer token and decodes the response
func (c *Client) PostJSON(ctx context.Context, url string, body, out interface{}) error {
	return c.send(ctx, http.MethodPost, url, body, true, out)
}

// GetJSON fetches url and decodes the response
func (c *Client) GetJSON(ctx context.Context, url string, includeToken bool, out interface{}) error {
	return c.send(ctx, http.MethodGet, url, nil, includeToken, out)
}

// postEndpoint resolves a named endpoint against the user API and posts to it
func (c *Client) postEndpoint(ctx context.Context, name string, body, out interface{}) error {
	path, err := endpoint(name)
	if err != nil {
		return err
	}
	return c.PostJSON(ctx, makeURL(c.APIBase(), path), body, out)
}

func (c *Client) send(ctx context.Context, method, url string, body interface{}, includeToken bool, out interface{}) error {
	token := c.Token()
	if includeToken && token == "" {
		return ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if includeToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	c.metrics.requests.Add(1)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.errors.Add(1)
		return fmt.Errorf("executing request: %w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	logrus.WithFields(logrus.Fields{
		"method":   method,
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("pocketcasts request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.errors.Add(1)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return NewAPIError(req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		c.metrics.errors.Add(1)
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}
