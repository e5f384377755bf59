package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"

	"github.com/stratpoint-engineering/enterprise-api/internal/api/http/handler"
	"github.com/stratpoint-engineering/enterprise-api/internal/api/http/middleware"
	"github.com/stratpoint-engineering/enterprise-api/internal/api/http/validate"
	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
	"github.com/stratpoint-engineering/enterprise-api/internal/metrics"
	"github.com/stratpoint-engineering/enterprise-api/internal/model"
	"github.com/stratpoint-engineering/enterprise-api/internal/service"
)

// Options configures the router.
type Options struct {
	BasePath       string
	RequestTimeout time.Duration
}

// Router represents the REST router of the identity API.
// It wires handlers, guards and cross-cutting middleware into an echo
// instance.
type Router struct {
	authService    *service.Auth
	userService    *service.Users
	healthService  handler.HealthService
	metrics        *metrics.Metrics
	contextManager model.ContextManager
	logger         *logger.Logger
	opts           Options
}

// New creates new Router instance.
func New(
	authService *service.Auth,
	userService *service.Users,
	healthService handler.HealthService,
	metrics *metrics.Metrics,
	contextManager model.ContextManager,
	logger *logger.Logger,
	opts Options,
) *Router {
	return &Router{
		authService:    authService,
		userService:    userService,
		healthService:  healthService,
		metrics:        metrics,
		contextManager: contextManager,
		logger:         logger,
		opts:           opts,
	}
}

// Register builds the echo instance with every route mounted.
func (r *Router) Register() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = handler.NewErrorHandler(r.logger).Handle

	logging := middleware.NewLogging(r.logger)

	e.Use(
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{
			Generator: func() string { return ulid.Make().String() },
		}),
		logging.Handle,
		echomw.Recover(),
	)
	if r.metrics != nil {
		e.Use(r.metrics.Middleware())
	}
	if r.opts.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(r.opts.RequestTimeout))
	}

	auth := middleware.NewAuth(r.authService, r.authService, r.authService, r.contextManager, e.Validator, r.logger)

	api := e.Group(r.opts.BasePath)
	r.registerAuthRoutes(api, auth)
	r.registerUserRoutes(api, auth)
	r.registerOpsRoutes(e)

	return e
}

func (r *Router) registerAuthRoutes(api *echo.Group, auth *middleware.Auth) {
	h := handler.NewAuth(r.authService, r.contextManager, r.logger)

	g := api.Group("/auth")
	g.POST("/login", h.Login, middleware.Guards(auth.Credentials))
	g.POST("/register", h.Register)
	g.POST("/refresh-token", h.Refresh, middleware.Guards(auth.Refresh))
	g.POST("/logout", h.Logout, middleware.Guards(auth.Access))
}

func (r *Router) registerUserRoutes(api *echo.Group, auth *middleware.Auth) {
	h := handler.NewUsers(r.userService, r.contextManager, r.logger)

	adminOnly := middleware.Guards(auth.Access, auth.RequireRole(model.RoleAdmin))
	authenticated := middleware.Guards(auth.Access)

	g := api.Group("/users")
	g.GET("", h.List, adminOnly)
	g.POST("", h.Create, adminOnly)
	g.GET("/me", h.Me, authenticated)
	g.GET("/:id", h.Get, authenticated)
	g.PATCH("/:id", h.Update, authenticated)
	g.DELETE("/:id", h.Delete, adminOnly)
}

func (r *Router) registerOpsRoutes(e *echo.Echo) {
	if r.healthService != nil {
		e.GET("/health", handler.NewHealth(r.healthService).Check)
	}
	if r.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))
	}
}
