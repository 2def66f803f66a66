package middleware

import (
	"go-print-erp/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Details    map[string]string `json:"details,omitempty"`
}

// AbortWithError classifies err, writes it and stops the chain. Server
// errors are logged and replaced by a generic message.
func AbortWithError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	status := appErr.StatusCode()

	message := appErr.Message
	if appErr.Kind == apperr.KindServer {
		RequestLogger(c).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Error:      string(appErr.Kind),
		Details:    appErr.Details,
	})
}
