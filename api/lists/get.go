package lists

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
	"github.com/killallgit/castsync/internal/pocketcasts"
	apperrors "github.com/killallgit/castsync/pkg/errors"
)

// Get syncs one of the user's lists and returns its episodes
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := pocketcasts.ParseList(c.Param("list"))
		if err != nil {
			types.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeNotFound, err.Error()).
				WithDetail("list", c.Param("list")))
			return
		}

		episodes, err := deps.EpisodeService.Sync(c.Request.Context(), list)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.EpisodesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			List:         string(list),
			Episodes:     types.FromModels(episodes),
			Count:        len(episodes),
		})
	}
}
