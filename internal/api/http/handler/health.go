package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stratpoint-engineering/enterprise-api/internal/health"
)

// HealthService checks the service's dependencies.
type HealthService interface {
	Check(ctx context.Context) health.Report
}

// Health serves the dependency health report.
type Health struct {
	healthService HealthService
}

// NewHealth creates a new Health handler.
func NewHealth(healthService HealthService) *Health {
	return &Health{healthService: healthService}
}

// Check responds 200 when every dependency is up and 503 otherwise.
func (h *Health) Check(c echo.Context) error {
	report := h.healthService.Check(c.Request().Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, report)
}
