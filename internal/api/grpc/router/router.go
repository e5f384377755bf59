package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/stratpoint-engineering/enterprise-api/internal/api/grpc/middleware"
	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
)

var healthServicePrefix = "/" + healthpb.Health_ServiceDesc.ServiceName + "/"

// Router represents the operational gRPC router.
// It exposes the standard health service and server reflection.
type Router struct {
	healthServer *grpchealth.Server
	logger       *logger.Logger
}

// New creates new gRPC Router instance.
func New(healthServer *grpchealth.Server, logger *logger.Logger) *Router {
	return &Router{
		healthServer: healthServer,
		logger:       logger,
	}
}

// logSkip keeps health probes out of the call log.
func logSkip(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), healthServicePrefix)
}

// Register registers all gRPC services and middleware.
//
// Returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recovery := middleware.NewRecovery(r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(),
			selector.UnaryServerInterceptor(logging.UnaryServerInterceptor(), selector.MatchFunc(logSkip)),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(),
			selector.StreamServerInterceptor(logging.StreamServerInterceptor(), selector.MatchFunc(logSkip)),
		),
	)

	healthpb.RegisterHealthServer(s, r.healthServer)
	reflection.Register(s)

	return s
}
