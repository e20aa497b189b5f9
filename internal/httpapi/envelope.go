package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope wraps every successful response body.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c echo.Context, code int, message string, data any) error {
	status := statusSuccess
	if code >= http.StatusBadRequest {
		status = statusError
	}
	return c.JSON(code, Envelope{Status: status, Message: message, Data: data})
}
