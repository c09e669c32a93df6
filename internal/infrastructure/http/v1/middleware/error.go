package middleware

import (
	"github.com/gin-gonic/gin"

	"infinito/internal/core/apperror"
	"infinito/pkg/logger"
)

// ErrorHandler renders the last error registered on the gin context as an
// apperror.Problem. Causes and unclassified errors are logged, never sent.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		renderError(c)
	}
}

func renderError(c *gin.Context) {
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err

	ctx := c.Request.Context()
	status, problem := apperror.ToProblem(err, c.GetString(ctxRequestID))
	appErr, ok := apperror.AsAppError(err)
	switch {
	case !ok:
		logger.Error(ctx, "unclassified error", "error", err)
	case appErr.Err != nil:
		logger.Error(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
	case apperror.IsContractViolation(err):
		// A client is sending malformed filters.
		logger.Warn(ctx, "contract violation", "message", appErr.Message, "details", appErr.Details)
	}
	c.JSON(status, problem)
}
