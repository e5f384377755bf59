package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stratpoint-engineering/enterprise-api/internal/apierror"
	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

// AuthService defines the session operations behind the auth routes.
type AuthService interface {
	Login(ctx context.Context, user model.User) (model.LoginResult, error)
	Register(ctx context.Context, params model.RegisterParams) (model.UserProfile, error)
	Refresh(ctx context.Context, user model.User) (model.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type registerResponse struct {
	User model.UserProfile `json:"user"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

// Auth serves the /auth routes. Credentials and refresh tokens are checked
// by guards before these handlers run.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Login issues a token pair to the user verified by the credentials guard.
func (h *Auth) Login(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := h.contextManager.GetUserFromContext(ctx)
	if !ok {
		return apierror.NewErrInvalidCredentials()
	}

	result, err := h.authService.Login(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Register creates a new account.
func (h *Auth) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	profile, err := h.authService.Register(c.Request().Context(), model.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{User: profile})
}

// Refresh rotates the refresh token of the user resolved by the refresh guard.
func (h *Auth) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := h.contextManager.GetUserFromContext(ctx)
	if !ok {
		return apierror.NewErrInvalidRefreshToken()
	}

	pair, err := h.authService.Refresh(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the caller's refresh token.
func (h *Auth) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := h.contextManager.GetIdentityFromContext(ctx)
	if !ok {
		return apierror.NewErrMissingAuthorizationToken()
	}

	if err := h.authService.Logout(ctx, identity.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, logoutResponse{Success: true})
}
