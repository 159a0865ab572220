package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/clinicore/scheduling-api/pkg/errors"
)

// Response is the envelope every handler returns.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func Success(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{Status: "success", Data: data})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Status: "error", Message: message})
}

func BadRequest(c *gin.Context, message string) {
	AppError(c, apperrors.BadRequest(message, nil))
}

// AppError renders an application error with its mapped HTTP status. Only
// the message is exposed; the wrapped cause stays server-side.
func AppError(c *gin.Context, err *apperrors.AppError) {
	Error(c, err.StatusCode(), err.Message)
}
