package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
	"github.com/stratpoint-engineering/enterprise-api/internal/model"
	"github.com/stratpoint-engineering/enterprise-api/internal/token"
)

// TokenService provides high-level operations for issuing, rotating,
// and revoking tokens. It composes the TokenManager and UserStore, which
// holds the single live refresh token hash per user.
type TokenService struct {
	manager model.TokenManager
	users   model.UserStore
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, users model.UserStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, users: users, logger: logger}
}

// Issue mints a new pair and overwrites the stored refresh hash, which
// invalidates any refresh token issued before.
func (s *TokenService) Issue(ctx context.Context, user model.User) (model.TokenPair, error) {
	pair, err := s.manager.Issue(user.Identity())
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.users.SetRefreshTokenHash(ctx, user.ID, token.HashRefreshToken(pair.RefreshToken)); err != nil {
		return model.TokenPair{}, fmt.Errorf("persist refresh: %w", err)
	}

	return pair, nil
}

// Rotate mints a new pair and swaps the stored hash from the one the caller
// validated. If another request changed the hash in between, nothing is
// issued and model.ErrRefreshTokenStale is returned.
func (s *TokenService) Rotate(ctx context.Context, user model.User) (model.TokenPair, error) {
	if user.RefreshTokenHash == "" {
		return model.TokenPair{}, model.ErrRefreshNotActive
	}

	pair, err := s.manager.Issue(user.Identity())
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue new tokens: %w", err)
	}

	next := token.HashRefreshToken(pair.RefreshToken)
	if err := s.users.SwapRefreshTokenHash(ctx, user.ID, user.RefreshTokenHash, next); err != nil {
		return model.TokenPair{}, fmt.Errorf("rotate refresh: %w", err)
	}

	return pair, nil
}

// ValidateRefresh checks the presented refresh token signature and expiry,
// then that it is still the current one for its user.
func (s *TokenService) ValidateRefresh(ctx context.Context, presented string) (model.User, error) {
	identity, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", model.ErrTokenInvalid, err)
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("load refresh owner: %w", err)
	}

	if !user.IsActive {
		return model.User{}, model.ErrInactiveUser
	}
	if user.RefreshTokenHash == "" {
		return model.User{}, model.ErrRefreshNotActive
	}
	if !token.CompareRefreshHash(user.RefreshTokenHash, presented) {
		return model.User{}, model.ErrRefreshMismatch
	}

	return user, nil
}

// Revoke clears the stored refresh hash. Clearing an already empty hash
// succeeds.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		return fmt.Errorf("clear refresh: %w", err)
	}
	return nil
}

// GetIdentity validates an access token.
func (s *TokenService) GetIdentity(accessToken string) (model.Identity, error) {
	return s.manager.ParseAccessToken(accessToken)
}
