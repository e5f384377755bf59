package middleware

import (
	"context"
	"log/slog"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc"

	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
)

// Logging logs finished gRPC calls through the service logger.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Logger adapts the service logger to the interceptor logging interface.
// Interceptor levels share slog's numeric values.
func (l *Logging) Logger() logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.logger.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

// UnaryServerInterceptor logs method, duration and status code of unary calls.
func (l *Logging) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return logging.UnaryServerInterceptor(l.Logger(), logging.WithLogOnEvents(logging.FinishCall))
}

// StreamServerInterceptor logs method, duration and status code of streams.
func (l *Logging) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return logging.StreamServerInterceptor(l.Logger(), logging.WithLogOnEvents(logging.FinishCall))
}
