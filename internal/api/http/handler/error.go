package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stratpoint-engineering/enterprise-api/internal/apierror"
	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
}

// ErrorHandler renders errors returned by handlers and guards.
type ErrorHandler struct {
	logger *logger.Logger
}

// NewErrorHandler creates a new ErrorHandler.
func NewErrorHandler(logger *logger.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle implements echo.HTTPErrorHandler.
func (h *ErrorHandler) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := h.response(err, c)

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(resp.StatusCode)
	} else {
		writeErr = c.JSON(resp.StatusCode, resp)
	}
	if writeErr != nil {
		h.logger.Error("HTTP handler: failed to write error response",
			"path", c.Request().URL.Path,
			"error", writeErr.Error())
	}
}

func (h *ErrorHandler) response(err error, c echo.Context) ErrorResponse {
	if apiErr, ok := apierror.As(err); ok {
		if apiErr.Kind == apierror.KindInternal {
			h.logInternal(err, c)
		}
		return newErrorResponse(apiErr.Status(), apiErr.Message, apiErr.Details)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
		if httpErr.Code >= http.StatusInternalServerError {
			h.logInternal(err, c)
		}
		return newErrorResponse(httpErr.Code, message, nil)
	}

	internal := apierror.NewErrInternalServerError(err)
	h.logInternal(internal, c)
	return newErrorResponse(internal.Status(), internal.Message, nil)
}

func (h *ErrorHandler) logInternal(err error, c echo.Context) {
	h.logger.Error("HTTP handler: request failed",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"error", err.Error())
}

func newErrorResponse(status int, message string, details []string) ErrorResponse {
	return ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
		Details:    details,
	}
}
