package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
)

// Logging is an echo middleware that logs HTTP requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, route, duration and status for each request. Errors
// are rendered here so the logged status is the one sent to the client.
func (l *Logging) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()
		attrs := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"route", c.Path(),
			"status", res.Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", res.Header().Get(echo.HeaderXRequestID),
		}

		switch {
		case res.Status >= http.StatusInternalServerError:
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			l.logger.Error("HTTP request failed", attrs...)
		case res.Status >= http.StatusBadRequest:
			l.logger.Warn("HTTP request rejected", attrs...)
		default:
			l.logger.Info("HTTP request completed", attrs...)
		}

		return nil
	}
}
