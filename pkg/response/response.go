package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/avillareal/homescout/pkg/errors"
)

// ErrorBody is the JSON error envelope returned for failed requests.
// Successful endpoints return their domain payloads directly.
type ErrorBody struct {
	Success bool       `json:"success"`
	Error   *ErrorInfo `json:"error"`
}

// ErrorInfo holds the client-visible error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorBody{
		Success: false,
		Error: &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}

// Abort writes the error response and stops handler chain processing.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
