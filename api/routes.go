package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/episodes"
	"github.com/killallgit/castsync/api/health"
	"github.com/killallgit/castsync/api/journal"
	"github.com/killallgit/castsync/api/lists"
	"github.com/killallgit/castsync/api/middleware"
	"github.com/killallgit/castsync/api/types"
	"github.com/killallgit/castsync/api/version"
)

// RouteConfig carries the shared limiter state and limits for route groups
type RouteConfig struct {
	RateLimiters       *sync.Map
	CleanupStop        chan struct{}
	CleanupInitialized *sync.Once
	RateLimit          int
	RateBurst          int
	NotesCacheTTL      time.Duration
}

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, cfg RouteConfig) error {
	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	engine.NoRoute(NotFoundHandler())

	if deps.EpisodeService == nil {
		return errors.New("episode service is not configured")
	}
	if cfg.RateLimiters == nil {
		cfg.RateLimiters = &sync.Map{}
	}
	if cfg.CleanupInitialized == nil {
		cfg.CleanupInitialized = &sync.Once{}
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}

	limit := func(scope string, rps, burst int) gin.HandlerFunc {
		return PerClientRateLimit(cfg.RateLimiters, cfg.CleanupStop, cfg.CleanupInitialized, scope, rps, burst)
	}

	v1 := engine.Group("/api/v1")

	// Episode routes share the configured limit; show notes are cached since
	// they rarely change once published
	episodeGroup := v1.Group("/episodes")
	episodeGroup.Use(limit("episodes", cfg.RateLimit, cfg.RateBurst))
	episodes.RegisterRoutes(episodeGroup, deps, middleware.CacheMiddleware(middleware.CacheConfig{
		Cache:      deps.Cache,
		DefaultTTL: cfg.NotesCacheTTL,
		Enabled:    deps.Cache != nil,
	}))

	// Lists sync a whole page of episodes per call, so they get a tighter limit
	listGroup := v1.Group("/lists")
	listGroup.Use(limit("lists", max(cfg.RateLimit/5, 1), max(cfg.RateBurst/5, 1)))
	lists.RegisterRoutes(listGroup, deps)

	journalGroup := v1.Group("/journal")
	journalGroup.Use(limit("journal", cfg.RateLimit, cfg.RateBurst))
	journal.RegisterRoutes(journalGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Status:  types.StatusError,
			Message: "The requested endpoint was not found",
			Code:    "NOT_FOUND",
			Details: map[string]interface{}{"path": c.Request.URL.Path},
		})
	}
}
