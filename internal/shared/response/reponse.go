package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/internal/shared/apperror"
	"bgpiesa-backend/pkg/logger"
)

// ErrorBody is the error envelope returned to clients.
// detail mirrors the message so older frontends reading "detail" keep working.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  string      `json:"detail"`
	Details interface{} `json:"details,omitempty"`
}

// Success writes data as the JSON body.
// The public catalog contract is the bare resource (no envelope).
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// NoContent writes a 204
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error envelope
func Error(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{
		Code:    code,
		Message: message,
		Detail:  message,
		Details: details,
	})
}

// FromError maps a domain error to status + envelope.
// Internal errors are logged and hidden behind a generic message.
func FromError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		Error(c, status, appErr.Code, appErr.Message, nil)
		return
	}

	logger.Error("request failed: "+c.Request.Method+" "+c.FullPath(), err)

	if errors.As(err, &appErr) {
		Error(c, status, appErr.Code, appErr.Message, nil)
		return
	}
	Error(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", nil)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}
