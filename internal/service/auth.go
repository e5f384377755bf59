package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stratpoint-engineering/enterprise-api/internal/apierror"
	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

// Auth implements the session lifecycle: credential verification, login,
// registration, refresh token rotation and logout.
type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	effects      sideEffects
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenManager model.TokenManager,
	cache model.ProfileCache,
	events model.EventPublisher,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenService: NewTokenService(tokenManager, userStore, logger),
		effects:      sideEffects{cache: cache, events: events, logger: logger, now: time.Now},
		logger:       logger,
	}
}

// ValidateCredentials verifies an email/password pair and records the login
// time on success.
func (a *Auth) ValidateCredentials(ctx context.Context, email, password string) (model.User, error) {
	email = model.NormalizeEmail(email)

	a.logger.Debug("Auth service: validating credentials",
		"email", email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: unknown email",
			"email", email)
		return model.User{}, apierror.NewErrInvalidCredentials()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !user.IsActive {
		a.logger.Info("Auth service: inactive user attempted login",
			"user_id", user.ID.String())
		return model.User{}, apierror.NewErrInactiveUser()
	}

	err = a.hasher.Compare(user.PasswordHash, password)
	if errors.Is(err, model.ErrInvalidCredentials) {
		a.logger.Info("Auth service: password mismatch",
			"user_id", user.ID.String())
		return model.User{}, apierror.NewErrInvalidCredentials()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to compare password: %w", err)
	}

	now := a.effects.now()
	err = a.userStore.UpdateLastLogin(ctx, user.ID, now)
	if err != nil {
		a.logger.Error("Auth service: failed to update last login",
			"user_id", user.ID.String(),
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now
	a.effects.invalidate(ctx, user.ID)

	return user, nil
}

// Login issues a token pair for a verified user. The previous refresh token,
// if any, stops being valid.
func (a *Auth) Login(ctx context.Context, user model.User) (model.LoginResult, error) {
	pair, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID.String(),
			"error", err.Error())
		return model.LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.effects.publishUser(ctx, model.EventSessionLogin, user)

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID.String())

	return model.LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.Profile(),
	}, nil
}

// Register creates a user with the default role. It does not log the user in.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.UserProfile, error) {
	email := model.NormalizeEmail(params.Email)

	a.logger.Debug("Auth service: starting user registration",
		"email", email)

	existing, err := a.userStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.UserProfile{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("Auth service: user already exists",
			"email", email)
		return model.UserProfile{}, apierror.NewErrEmailIsTaken(email)
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.effects.now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrEmailTaken) {
		return model.UserProfile{}, apierror.NewErrEmailIsTaken(email)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.UserProfile{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.effects.publishUser(ctx, model.EventUserRegistered, user)

	a.logger.Info("Auth service: user registration completed successfully",
		"user_id", user.ID.String())

	return user.Profile(), nil
}

// ValidateRefreshToken resolves a presented refresh token to its owner. Any
// token that is not the owner's current one is rejected as unauthorized.
func (a *Auth) ValidateRefreshToken(ctx context.Context, refreshToken string) (model.User, error) {
	user, err := a.tokenService.ValidateRefresh(ctx, refreshToken)
	if err == nil {
		return user, nil
	}

	switch {
	case errors.Is(err, model.ErrTokenInvalid),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrInactiveUser),
		errors.Is(err, model.ErrRefreshNotActive),
		errors.Is(err, model.ErrRefreshMismatch):
		a.logger.Info("Auth service: refresh token rejected",
			"error", err.Error())
		return model.User{}, apierror.NewErrInvalidRefreshToken()
	default:
		a.logger.Error("Auth service: failed to validate refresh token",
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to validate refresh token: %w", err)
	}
}

// Refresh rotates the refresh token of a user whose current token was just
// validated.
func (a *Auth) Refresh(ctx context.Context, user model.User) (model.TokenPair, error) {
	pair, err := a.tokenService.Rotate(ctx, user)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrRefreshTokenStale):
		a.logger.Warn("Auth service: concurrent refresh lost the race",
			"user_id", user.ID.String())
		return model.TokenPair{}, apierror.NewErrRefreshConflict()
	case errors.Is(err, model.ErrRefreshNotActive), errors.Is(err, model.ErrNotFound):
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken()
	default:
		a.logger.Error("Auth service: failed to rotate refresh token",
			"user_id", user.ID.String(),
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	a.effects.publishUser(ctx, model.EventSessionRefreshed, user)

	a.logger.Debug("Auth service: tokens refreshed",
		"user_id", user.ID.String())

	return pair, nil
}

// Logout clears the stored refresh hash, invalidating every outstanding
// refresh token of the user. Logging out twice succeeds.
func (a *Auth) Logout(ctx context.Context, userID uuid.UUID) error {
	err := a.tokenService.Revoke(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NewErrUserNotFound(userID.String())
	}
	if err != nil {
		a.logger.Error("Auth service: failed to revoke refresh token",
			"user_id", userID.String(),
			"error", err.Error())
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	a.effects.publish(ctx, model.Event{
		Type:       model.EventSessionLogout,
		UserID:     userID,
		OccurredAt: a.effects.now().UTC(),
	})

	a.logger.Info("Auth service: user logged out",
		"user_id", userID.String())

	return nil
}

// Authenticate validates a bearer access token.
func (a *Auth) Authenticate(accessToken string) (model.Identity, error) {
	identity, err := a.tokenService.GetIdentity(accessToken)
	if err != nil {
		a.logger.Debug("Auth service: access token rejected",
			"error", err.Error())
		return model.Identity{}, apierror.NewErrInvalidAuthorizationToken()
	}
	return identity, nil
}
