package episodes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
	"github.com/killallgit/castsync/internal/services/episodes"
)

// ActionRequest is the optional body of an action request
type ActionRequest struct {
	Position *int `json:"position"` // seconds, progress only
}

// PostAction applies one of the episode actions, e.g. star or progress
func PostAction(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c, "uuid")
		if !ok {
			return
		}

		action, err := episodes.ParseAction(c.Param("action"))
		if err != nil {
			types.SendError(c, err)
			return
		}

		var req ActionRequest
		if c.Request.ContentLength != 0 {
			if !types.BindJSONOrError(c, &req) {
				return
			}
		}

		position := 0
		if action == episodes.ActionProgress {
			if req.Position == nil {
				types.SendError(c, episodes.NewValidationError("position", "is required for progress"))
				return
			}
			position = *req.Position
		}

		episode, err := deps.EpisodeService.Apply(c.Request.Context(), uuid, action, position)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.SingleEpisodeResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: string(action) + " applied"},
			Episode:      types.FromModel(episode),
		})
	}
}
