package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"trackiq/internal/core/apperror"
	"trackiq/pkg/logger"
)

// ErrorHandler renders the last error of the request as
// {success:false, code, message, details, timestamp}.
// In production internal errors carry only a generic message; otherwise
// details.cause holds the underlying error text.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := apperror.AsAppError(err)
		if !ok {
			appErr = apperror.NewInternal(err)
		}

		if appErr.HTTPStatus >= 500 {
			logger.Error(c.Request.Context(), "request failed",
				"code", appErr.Code,
				"error", err,
			)
		} else if appErr.Err != nil {
			logger.Warn(c.Request.Context(), "request rejected",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}

		details := appErr.Details
		if appErr.Code == apperror.CodeInternal {
			details = map[string]any{"request_id": c.GetString("request_id")}
			if !production && appErr.Err != nil {
				details["cause"] = appErr.Err.Error()
			}
		}

		c.JSON(appErr.HTTPStatus, gin.H{
			"success":   false,
			"code":      appErr.Code,
			"message":   appErr.Message,
			"details":   details,
			"timestamp": time.Now().UTC(),
		})
	}
}
