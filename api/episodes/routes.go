package episodes

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
)

// RegisterRoutes registers episode routes. notes may carry extra middleware,
// typically a response cache.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, notes ...gin.HandlerFunc) {
	// GET /api/v1/episodes/:uuid - Current episode state
	router.GET("/:uuid", GetByUUID(deps))

	// POST /api/v1/episodes/:uuid/actions/:action - Apply an action
	router.POST("/:uuid/actions/:action", PostAction(deps))

	// GET /api/v1/episodes/:uuid/share - Public share link
	router.GET("/:uuid/share", GetShare(deps))

	// GET /api/v1/episodes/:uuid/notes - Show notes
	router.GET("/:uuid/notes", append(notes, GetNotes(deps))...)
}
