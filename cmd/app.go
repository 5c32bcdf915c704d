package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/killallgit/castsync/internal/database"
	"github.com/killallgit/castsync/internal/pocketcasts"
	"github.com/killallgit/castsync/internal/services/auth"
	"github.com/killallgit/castsync/internal/services/cache"
	"github.com/killallgit/castsync/internal/services/episodes"
	"github.com/killallgit/castsync/pkg/config"
	"github.com/killallgit/castsync/pkg/download"
)

// tokenLeeway refuses tokens about to expire mid-command
const tokenLeeway = time.Minute

// app is everything a command needs, built from configuration
type app struct {
	config   *config.Config
	client   *pocketcasts.Client
	cache    *cache.MemoryCache
	db       *database.DB
	episodes *episodes.Service
}

// newClient builds an unauthenticated client from configuration
func newClient(cfg *config.Config, c cache.Cache) *pocketcasts.Client {
	return pocketcasts.NewClient(pocketcasts.Config{
		APIBase:           cfg.PocketCasts.APIBase,
		PodcastAPIBase:    cfg.PocketCasts.PodcastAPIBase,
		UserAgent:         cfg.PocketCasts.UserAgent,
		Timeout:           cfg.PocketCasts.Timeout,
		RequestsPerSecond: cfg.PocketCasts.RateLimit,
		Burst:             cfg.PocketCasts.Burst,
		Cache:             c,
		PodcastCacheTTL:   cfg.PocketCasts.PodcastTTL,
	})
}

func tokenStore(cfg *config.Config) *auth.TokenStore {
	return auth.NewTokenStore(cfg.Auth.KeyringService, cfg.Auth.KeyringUser)
}

// resolveToken prefers a configured token over the keyring
func resolveToken(cfg *config.Config) (string, error) {
	token := cfg.PocketCasts.Token
	if token == "" {
		stored, err := tokenStore(cfg).Load()
		if err != nil {
			return "", err
		}
		token = stored
	}
	if err := auth.CheckUsable(token, time.Now(), tokenLeeway); err != nil {
		return "", err
	}
	return token, nil
}

// newApp wires the authenticated client, the library and the episode service
func newApp() (*app, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	token, err := resolveToken(cfg)
	if err != nil {
		return nil, err
	}

	mc := cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.CleanupInterval)
	client := newClient(cfg, mc)
	client.SetToken(token)

	db, err := database.Open(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		mc.Stop()
		return nil, fmt.Errorf("opening library: %w", err)
	}

	return &app{
		config:   cfg,
		client:   client,
		cache:    mc,
		db:       db,
		episodes: episodes.NewService(client, episodes.NewRepository(db.DB)),
	}, nil
}

func (a *app) downloader() *download.Downloader {
	opts := download.DefaultOptions()
	if a.config.Download.MaxSize > 0 {
		opts.MaxSize = a.config.Download.MaxSize
	}
	if a.config.Download.Timeout > 0 {
		opts.Timeout = a.config.Download.Timeout
	}
	opts.ValidateAudio = a.config.Download.ValidateAudio
	opts.UserAgent = a.config.PocketCasts.UserAgent
	return download.NewDownloader(opts)
}

// Close releases the library and stops the cache janitor
func (a *app) Close() error {
	a.cache.Stop()
	m := a.client.Metrics()
	logrus.WithFields(logrus.Fields{
		"requests":     m.Requests,
		"errors":       m.Errors,
		"cache_hits":   m.CacheHits,
		"cache_misses": m.CacheMisses,
	}).Debug("pocketcasts client usage")
	return a.db.Close()
}
