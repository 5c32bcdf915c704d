package episodes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
)

// GetByUUID returns the current state of one episode
func GetByUUID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c, "uuid")
		if !ok {
			return
		}

		episode, err := deps.EpisodeService.Get(c.Request.Context(), uuid)
		if err != nil {
			types.SendError(c, err)
			return
		}

		response := types.SingleEpisodeResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Episode:      types.FromModel(episode),
		}
		if episode.Stale {
			response.Message = "Pocket Casts unreachable, served from local library"
		}
		c.JSON(http.StatusOK, response)
	}
}
