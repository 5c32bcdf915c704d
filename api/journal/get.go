package journal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
)

const defaultLimit = 50

// Get lists recorded episode actions, newest first. ?episode= narrows the
// journal to one episode.
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := types.LimitQuery(c, defaultLimit)
		if !ok {
			return
		}

		actions, err := deps.EpisodeService.Journal(c.Request.Context(), c.Query("episode"), limit)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.JournalResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Actions:      types.FromActions(actions),
			Count:        len(actions),
		})
	}
}
