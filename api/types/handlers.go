package types

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/killallgit/castsync/internal/pocketcasts"
	"github.com/killallgit/castsync/internal/services/episodes"
	apperrors "github.com/killallgit/castsync/pkg/errors"
)

// Handler utility functions shared by the route packages

// UUIDParam extracts a required path parameter. It sends a 400 and returns
// false when the parameter is blank.
func UUIDParam(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		SendError(c, apperrors.ValidationError(name, "is required"))
		return "", false
	}
	return value, true
}

// LimitQuery parses the optional limit query parameter
func LimitQuery(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		SendError(c, apperrors.ValidationError("limit", "must be a non-negative integer"))
		return 0, false
	}
	return limit, true
}

// BindJSONOrError attempts to bind JSON request body to target struct.
// Returns false and sends error response if binding fails.
func BindJSONOrError(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		SendError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
		return false
	}
	return true
}

// SendError renders err with the status of its application error code
func SendError(c *gin.Context, err error) {
	appErr := ToAppError(err)
	status := appErr.GetHTTPCode()

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("request failed")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Status:  StatusError,
		Message: appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	})
}

// ToAppError classifies domain errors into application error codes
func ToAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	var validation episodes.ValidationError
	switch {
	case errors.As(err, &validation):
		return apperrors.ValidationError(validation.Field, validation.Message).WithCause(err)
	case episodes.IsValidation(err):
		return apperrors.ValidationError("position", err.Error()).WithCause(err)
	case episodes.IsNotFound(err):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "episode not found")
	case errors.Is(err, pocketcasts.ErrNotAuthenticated),
		errors.Is(err, pocketcasts.ErrUnauthorized):
		return apperrors.Unauthorized("Pocket Casts rejected the stored credentials").WithCause(err)
	case errors.Is(err, pocketcasts.ErrRateLimited):
		return apperrors.RateLimitError("pocketcasts", "upstream limit").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeAPITimeout, "Pocket Casts did not answer in time")
	case pocketcasts.IsAPIError(err):
		return apperrors.ExternalServiceError("pocketcasts", err)
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, "internal error")
}
