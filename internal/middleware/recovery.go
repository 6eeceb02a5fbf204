package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avillareal/homescout/pkg/logger"
	"github.com/avillareal/homescout/pkg/response"
)

// Recovery converts panics into a 500 response and logs the error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
				)
				// Avoid leaking internals to clients
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorBody{
					Success: false,
					Error: &response.ErrorInfo{
						Code:    "INTERNAL_SERVER_ERROR",
						Message: "Internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, response.ErrorBody{
		Success: false,
		Error: &response.ErrorInfo{
			Code:    "NOT_FOUND",
			Message: "route " + c.Request.URL.Path + " not found",
		},
	})
}
