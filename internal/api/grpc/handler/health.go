package handler

import (
	"context"
	"time"

	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/stratpoint-engineering/enterprise-api/internal/health"
	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
)

// ServiceName is the service name reported by the gRPC health service next
// to the server-wide "" entry.
const ServiceName = "identity.api"

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Health mirrors dependency health into the standard gRPC health service.
type Health struct {
	checker  HealthChecker
	server   *grpchealth.Server
	interval time.Duration
	logger   *logger.Logger
}

// NewHealth creates a new Health handler publishing into server.
func NewHealth(checker HealthChecker, server *grpchealth.Server, interval time.Duration, logger *logger.Logger) *Health {
	return &Health{
		checker:  checker,
		server:   server,
		interval: interval,
		logger:   logger,
	}
}

// Sync runs the dependency checks once and publishes the outcome.
func (h *Health) Sync(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	report := h.checker.Check(ctx)

	status := healthpb.HealthCheckResponse_SERVING
	if !report.Healthy() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		for name, st := range report.Error {
			h.logger.Warn("Health: dependency down",
				"component", name,
				"error", st.Message)
		}
	}

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)

	return status
}

// Run syncs immediately and then every interval until ctx is done.
func (h *Health) Run(ctx context.Context) {
	h.Sync(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sync(ctx)
		}
	}
}
