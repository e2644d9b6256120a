package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glarm/pkg/errors"
)

type Body struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: 0, Message: message, Data: data})
}

// Fail writes a 400 envelope.
func Fail(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusBadRequest, Body{Code: -1, Message: message, Data: data})
}

// FailWithError maps workflow error codes onto HTTP statuses.
func FailWithError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusBadRequest
	switch code {
	case errors.CodePermissionDenied:
		status = http.StatusForbidden
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeDuplicateCategory:
		status = http.StatusConflict
	case errors.CodeProtectedCategory:
		status = http.StatusForbidden
	}
	c.JSON(status, Body{Code: code, Message: errors.GetMessage(err)})
}
