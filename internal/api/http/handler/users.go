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

// UserService defines user management operations.
type UserService interface {
	List(ctx context.Context, role model.Role) ([]model.UserProfile, error)
	Get(ctx context.Context, id uuid.UUID) (model.UserProfile, error)
	Create(ctx context.Context, params model.CreateUserParams) (model.UserProfile, error)
	Update(ctx context.Context, actor model.Identity, id uuid.UUID, params model.UpdateUserParams) (model.UserProfile, error)
	Delete(ctx context.Context, id uuid.UUID) (model.UserProfile, error)
}

type createUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role" validate:"omitempty,oneof=admin manager user guest"`
}

type updateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin manager user guest"`
	IsActive  *bool   `json:"isActive"`
}

func (r updateUserRequest) params() model.UpdateUserParams {
	params := model.UpdateUserParams{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		IsActive:  r.IsActive,
	}
	if r.Role != nil {
		role := model.Role(*r.Role)
		params.Role = &role
	}
	return params
}

// Users serves the /users routes.
type Users struct {
	userService    UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUsers creates a new Users handler.
func NewUsers(userService UserService, contextManager model.ContextManager, logger *logger.Logger) *Users {
	return &Users{
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// List returns every user, or only those with the role given in ?role=.
func (h *Users) List(c echo.Context) error {
	profiles, err := h.userService.List(c.Request().Context(), model.Role(c.QueryParam("role")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}

func (h *Users) Create(c echo.Context) error {
	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	profile, err := h.userService.Create(c.Request().Context(), model.CreateUserParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, profile)
}

// Me returns the caller's own profile.
func (h *Users) Me(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := h.contextManager.GetIdentityFromContext(ctx)
	if !ok {
		return apierror.NewErrMissingAuthorizationToken()
	}

	profile, err := h.userService.Get(ctx, identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Users) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Update applies a partial update. Who may change what is decided by the
// service from the caller's identity.
func (h *Users) Update(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := h.contextManager.GetIdentityFromContext(ctx)
	if !ok {
		return apierror.NewErrMissingAuthorizationToken()
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	profile, err := h.userService.Update(ctx, identity, id, req.params())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Delete removes a user and returns the deleted profile.
func (h *Users) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
