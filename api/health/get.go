package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
	"github.com/killallgit/castsync/internal/services/cache"
)

// Get handles health check requests. A broken library answers 503.
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		response := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		db := getDatabaseStatus(deps)
		response["database"] = db
		if db["status"] == "unhealthy" {
			status = http.StatusServiceUnavailable
			response["status"] = "unhealthy"
		}

		if deps != nil && deps.Cache != nil {
			if sp, ok := deps.Cache.(cache.StatsProvider); ok {
				stats := sp.Stats()
				response["cache"] = gin.H{
					"entries":   stats.Entries,
					"hits":      stats.Hits,
					"misses":    stats.Misses,
					"evictions": stats.Evictions,
				}
			}
		}

		c.JSON(status, response)
	}
}

// getDatabaseStatus returns the library connection status
func getDatabaseStatus(deps *types.Dependencies) gin.H {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}

	return gin.H{"status": "healthy"}
}
