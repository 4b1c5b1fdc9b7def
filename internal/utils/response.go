package utils

import (
	"net/http"

	"job_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope written on every API response.
type Response struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Limit int `json:"limit"`
}

func Success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPagination echoes the requested limit. A nil pagination is
// omitted from the body.
func SuccessWithPagination(c *gin.Context, message string, data any, pagination *Pagination) {
	c.JSON(http.StatusOK, Response{
		Status:     StatusSuccess,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// Error writes err with the status and message derived from its kind.
// Server-side failures are logged with the cause; clients only see the
// generic message.
func Error(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": status,
		}).Error("Request failed")
	}

	c.JSON(status, Response{
		Status:  StatusError,
		Message: common.ClientMessage(err),
	})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Status:  StatusError,
		Message: message,
	})
}
