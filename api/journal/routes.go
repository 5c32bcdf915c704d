package journal

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
)

// RegisterRoutes registers journal routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", Get(deps))
}
