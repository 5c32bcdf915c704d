package lists

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
)

// RegisterRoutes registers list routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/:list", Get(deps))
}
