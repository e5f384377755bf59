package handler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/stratpoint-engineering/enterprise-api/internal/health"
	"github.com/stratpoint-engineering/enterprise-api/internal/testutil"
)

type healthFunc func(ctx context.Context) health.Report

func (f healthFunc) Check(ctx context.Context) health.Report { return f(ctx) }

func servingStatus(t *testing.T, s *grpchealth.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	resp, err := s.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_Sync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		report health.Report
		want   healthpb.HealthCheckResponse_ServingStatus
	}{
		{
			name:   "all dependencies up",
			report: health.Report{Status: health.StatusOK},
			want:   healthpb.HealthCheckResponse_SERVING,
		},
		{
			name: "database down",
			report: health.Report{
				Status: health.StatusError,
				Error:  map[string]health.ComponentStatus{"database": {Status: "down", Message: "connection refused"}},
			},
			want: healthpb.HealthCheckResponse_NOT_SERVING,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := grpchealth.NewServer()
			h := NewHealth(healthFunc(func(context.Context) health.Report { return tt.report }), server, time.Minute, testutil.MakeNoopLogger())

			got := h.Sync(context.Background())

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, servingStatus(t, server, ""))
			assert.Equal(t, tt.want, servingStatus(t, server, ServiceName))
		})
	}
}

func TestHealth_Run(t *testing.T) {
	var calls atomic.Int32
	server := grpchealth.NewServer()
	h := NewHealth(healthFunc(func(context.Context) health.Report {
		calls.Add(1)
		return health.Report{Status: health.StatusOK}
	}), server, 5*time.Millisecond, testutil.MakeNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, server, ServiceName))
}

func TestHealth_ShutdownWins(t *testing.T) {
	server := grpchealth.NewServer()
	h := NewHealth(healthFunc(func(context.Context) health.Report {
		return health.Report{Status: health.StatusOK}
	}), server, time.Minute, testutil.MakeNoopLogger())

	server.Shutdown()
	h.Sync(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, server, ""))
}
