package episodes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/castsync/api/types"
)

// GetShare returns the public share link of an episode
func GetShare(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c, "uuid")
		if !ok {
			return
		}

		link, err := deps.EpisodeService.ShareLink(c.Request.Context(), uuid)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.ShareResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			UUID:         uuid,
			URL:          link,
		})
	}
}

// GetNotes returns the show notes of an episode
func GetNotes(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c, "uuid")
		if !ok {
			return
		}

		notes, err := deps.EpisodeService.ShowNotes(c.Request.Context(), uuid)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.NotesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			UUID:         uuid,
			Notes:        notes,
		})
	}
}
