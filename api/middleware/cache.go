// Package middleware holds gin middleware that needs service dependencies.
package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/killallgit/castsync/internal/services/cache"
)

// CacheConfig holds configuration for cache middleware
type CacheConfig struct {
	Cache      cache.Cache
	DefaultTTL time.Duration
	Enabled    bool
}

// CachedResponse is what gets stored for one GET response
type CachedResponse struct {
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	CachedAt    time.Time `json:"cached_at"`
	ETag        string    `json:"etag"`
}

// responseWriter captures response for caching
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

// CacheMiddleware serves repeated GETs from cfg.Cache. Only 200 responses are
// stored; clients can bypass with Cache-Control: no-cache.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || cfg.Cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		if shouldBypassCache(c.Request) {
			c.Header("X-Cache", "BYPASS")
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := generateCacheKey(c.Request)

		if data, found := cfg.Cache.Get(ctx, key); found {
			var cached CachedResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				if match := c.GetHeader("If-None-Match"); match != "" && match == cached.ETag {
					c.Header("ETag", cached.ETag)
					c.AbortWithStatus(http.StatusNotModified)
					return
				}
				c.Header("X-Cache", "HIT")
				c.Header("ETag", cached.ETag)
				c.Header("Age", fmt.Sprintf("%d", int(time.Since(cached.CachedAt).Seconds())))
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
			_ = cfg.Cache.Delete(ctx, key)
		}

		c.Header("X-Cache", "MISS")
		w := &responseWriter{ResponseWriter: c.Writer, body: new(bytes.Buffer)}
		c.Writer = w

		c.Next()

		if w.Status() != http.StatusOK || w.body.Len() == 0 {
			return
		}

		cached := CachedResponse{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
			CachedAt:    time.Now(),
			ETag:        generateETag(w.body.Bytes()),
		}
		data, err := json.Marshal(cached)
		if err != nil {
			return
		}
		if err := cfg.Cache.Set(ctx, key, data, cfg.DefaultTTL); err != nil {
			logrus.WithError(err).WithField("key", key).Debug("response not cached")
		}
	}
}

// shouldBypassCache checks if cache should be bypassed based on request headers
func shouldBypassCache(req *http.Request) bool {
	for _, directive := range strings.Split(strings.ToLower(req.Header.Get("Cache-Control")), ",") {
		directive = strings.TrimSpace(directive)
		if directive == "no-cache" || directive == "no-store" || directive == "max-age=0" {
			return true
		}
	}
	return req.Header.Get("Pragma") == "no-cache"
}

// generateCacheKey creates a unique key for the request
func generateCacheKey(req *http.Request) string {
	parts := []string{req.URL.Path}

	params := req.URL.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range params[k] {
			parts = append(parts, k+"="+v)
		}
	}

	return "http:" + strings.Join(parts, ":")
}

// generateETag creates an ETag for the response body
func generateETag(body []byte) string {
	hash := sha256.Sum256(body)
	return `"` + hex.EncodeToString(hash[:16]) + `"`
}
