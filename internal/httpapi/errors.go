package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Success    bool                  `json:"success"`
	StatusCode int                   `json:"statusCode"`
	Message    string                `json:"message"`
	ErrorType  string                `json:"errorType"`
	Errors     []goerrors.FieldError `json:"errors,omitempty"`
	RequestID  string                `json:"requestId,omitempty"`
	Stack      string                `json:"stack,omitempty"`
}

var categoryStatus = map[goerrors.Category]int{
	goerrors.CategoryValidation:       http.StatusBadRequest,
	goerrors.CategoryBadInput:         http.StatusBadRequest,
	goerrors.CategoryAuth:             http.StatusUnauthorized,
	goerrors.CategoryAuthz:            http.StatusForbidden,
	goerrors.CategoryNotFound:         http.StatusNotFound,
	goerrors.CategoryConflict:         http.StatusConflict,
	goerrors.CategoryRateLimit:        http.StatusTooManyRequests,
	goerrors.CategoryMethodNotAllowed: http.StatusMethodNotAllowed,
	goerrors.CategoryInternal:         http.StatusInternalServerError,
}

// NewErrorHandler returns the terminal error stage. It is the only place an
// error becomes a response; stack details are left out in production.
func NewErrorHandler(production bool, logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		mapped := toError(err)
		code := statusOf(mapped)
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)

		body := ErrorResponse{
			Success:    false,
			StatusCode: code,
			Message:    mapped.Message,
			ErrorType:  strings.ToUpper(mapped.Category.String()),
			Errors:     mapped.AllValidationErrors(),
			RequestID:  requestID,
		}
		if !production {
			body.Stack = mapped.ErrorWithStack()
		}

		logError(c, logger, mapped, code, requestID)

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, body)
		}
		if writeErr != nil {
			logger.Error("failed to write error response", slog.String("error", writeErr.Error()))
		}
	}
}

// toError converts anything a handler or middleware returns into a tagged
// error. echo errors carry their own status code and are mapped first.
func toError(err error) *goerrors.Error {
	var he *echo.HTTPError
	if goerrors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		} else if he.Message != nil {
			message = fmt.Sprint(he.Message)
		}
		return goerrors.Wrap(err, goerrors.HTTPStatusToCategory(he.Code), message).
			WithCode(he.Code).
			WithTextCode(goerrors.HTTPStatusToTextCode(he.Code))
	}
	return goerrors.MapToError(err, goerrors.DefaultErrorMappers())
}

func statusOf(err *goerrors.Error) int {
	if err.Code >= http.StatusBadRequest && err.Code < 600 {
		return err.Code
	}
	if code, ok := categoryStatus[err.Category]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func logError(c echo.Context, logger *slog.Logger, err *goerrors.Error, code int, requestID string) {
	attrs := []slog.Attr{
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
		slog.String("ip", c.RealIP()),
		slog.String("request_id", requestID),
		slog.Int("status", code),
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, goerrors.ToSlogAttributes(err)...)

	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
		if err.Source != nil {
			attrs = append(attrs, slog.String("cause", err.Source.Error()))
		}
		if err.Location != nil {
			attrs = append(attrs, slog.String("location", err.Location.String()))
		}
	}
	logger.LogAttrs(c.Request().Context(), level, "request failed", attrs...)
}
