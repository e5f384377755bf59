package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpchealth "google.golang.org/grpc/health"

	grpchandler "github.com/stratpoint-engineering/enterprise-api/internal/api/grpc/handler"
	grpcrouter "github.com/stratpoint-engineering/enterprise-api/internal/api/grpc/router"
	grpcserver "github.com/stratpoint-engineering/enterprise-api/internal/api/grpc/server"
	httpctx "github.com/stratpoint-engineering/enterprise-api/internal/api/http/context"
	httprouter "github.com/stratpoint-engineering/enterprise-api/internal/api/http/router"
	httpserver "github.com/stratpoint-engineering/enterprise-api/internal/api/http/server"
	"github.com/stratpoint-engineering/enterprise-api/internal/cache"
	"github.com/stratpoint-engineering/enterprise-api/internal/config"
	"github.com/stratpoint-engineering/enterprise-api/internal/events"
	"github.com/stratpoint-engineering/enterprise-api/internal/health"
	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
	"github.com/stratpoint-engineering/enterprise-api/internal/metrics"
	"github.com/stratpoint-engineering/enterprise-api/internal/model"
	"github.com/stratpoint-engineering/enterprise-api/internal/password"
	"github.com/stratpoint-engineering/enterprise-api/internal/repository/memory"
	"github.com/stratpoint-engineering/enterprise-api/internal/repository/postgres"
	"github.com/stratpoint-engineering/enterprise-api/internal/server"
	"github.com/stratpoint-engineering/enterprise-api/internal/service"
	"github.com/stratpoint-engineering/enterprise-api/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const (
	healthCheckTimeout = 2 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.Env)

	var checkers []health.Checker

	var userStore model.UserStore
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory credential store, users are lost on restart")
		userStore = memory.NewUserRepository()
	default:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN, cfg.Database.MigrateOnStart)
		if err != nil {
			logger.Fatal("failed to initialize storage", "error", err)
		}
		defer db.Close()

		userStore = postgres.NewUserRepository(db)
		checkers = append(checkers, health.NewSQLChecker("database", db.SQLDB()))
	}

	var profileCache model.ProfileCache = cache.Noop{}
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("failed to connect to redis, profile cache disabled", "error", err)
		} else {
			defer client.Close()
			profileCache = cache.NewProfileCache(client, cfg.Redis.ProfileTTL)
			checkers = append(checkers, health.NewRedisChecker(client))
		}
	}

	m := metrics.New()

	var publisher model.EventPublisher = events.Noop{}
	if cfg.AMQP.Enabled {
		p, err := events.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.Warn("failed to connect to AMQP broker, events disabled", "error", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}
	publisher = m.WrapPublisher(publisher)

	tokenManager, err := token.NewJWT(token.Options{
		AccessSecret:  cfg.JWT.Secret,
		AccessTTL:     cfg.JWT.ExpiresIn,
		RefreshSecret: cfg.JWT.RefreshSecret,
		RefreshTTL:    cfg.JWT.RefreshExpiresIn,
	})
	if err != nil {
		logger.Fatal("failed to initialize token manager", "error", err)
	}
	hasher := password.NewBcrypt(cfg.Password.BcryptCost)

	authService := service.NewAuth(userStore, hasher, tokenManager, profileCache, publisher, logger)
	userService := service.NewUsers(userStore, hasher, profileCache, publisher, logger)
	healthService := health.NewService(healthCheckTimeout, checkers...)

	servers := []model.Server{
		registerHTTPServer(cfg, logger, authService, userService, healthService, m),
	}
	if cfg.GRPC.Enabled {
		servers = append(servers, registerGRPCServer(ctx, cfg, logger, healthService))
	}

	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			err := s.Start(sl)
			if err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerHTTPServer(
	cfg *config.Config,
	logger *logger.Logger,
	authService *service.Auth,
	userService *service.Users,
	healthService *health.Service,
	m *metrics.Metrics,
) *httpserver.HTTPServer {
	r := httprouter.New(authService, userService, healthService, m, httpctx.NewManager(), logger, httprouter.Options{
		BasePath:       cfg.HTTP.BasePath,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})

	return httpserver.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port), cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
}

func registerGRPCServer(
	ctx context.Context,
	cfg *config.Config,
	logger *logger.Logger,
	healthService *health.Service,
) *grpcserver.GRPCServer {
	hs := grpchealth.NewServer()
	go grpchandler.NewHealth(healthService, hs, cfg.GRPC.HealthInterval, logger).Run(ctx)

	s := grpcrouter.New(hs, logger).Register()

	return grpcserver.NewGRPCServer(s, hs, fmt.Sprintf(":%s", cfg.GRPC.Port))
}
