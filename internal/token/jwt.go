package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

// Claims represents JWT claims shared by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	TokenType string     `json:"typ"`
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

var _ model.TokenManager = (*JWT)(nil)

// Options configures the token manager.
type Options struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// JWT implements TokenManager backed by symmetric HMAC, with distinct keys
// for access and refresh tokens.
type JWT struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWT creates a new JWT token manager. Missing secrets or non-positive
// TTLs are configuration errors.
func NewJWT(opts Options) (*JWT, error) {
	if opts.AccessSecret == "" || opts.RefreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if opts.AccessTTL <= 0 || opts.RefreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	return &JWT{
		accessSecret:  []byte(opts.AccessSecret),
		accessTTL:     opts.AccessTTL,
		refreshSecret: []byte(opts.RefreshSecret),
		refreshTTL:    opts.RefreshTTL,
		now:           time.Now,
	}, nil
}

// Issue signs a new access/refresh pair for the identity.
func (j *JWT) Issue(identity model.Identity) (model.TokenPair, error) {
	now := j.now()

	access, err := j.sign(identity, typeAccess, now, j.accessTTL, j.accessSecret)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := j.sign(identity, typeRefresh, now, j.refreshTTL, j.refreshSecret)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccessToken validates an access token and returns its identity.
func (j *JWT) ParseAccessToken(tokenString string) (model.Identity, error) {
	identity, err := j.parse(tokenString, typeAccess, j.accessSecret)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	return identity, nil
}

// ParseRefreshToken validates a refresh token and returns its identity.
func (j *JWT) ParseRefreshToken(tokenString string) (model.Identity, error) {
	identity, err := j.parse(tokenString, typeRefresh, j.refreshSecret)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to parse refresh token: %w", err)
	}
	return identity, nil
}

func (j *JWT) sign(identity model.Identity, tokenType string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:     identity.Email,
		Role:      identity.Role,
		TokenType: tokenType,
	})

	return token.SignedString(secret)
}

func (j *JWT) parse(tokenString, tokenType string, secret []byte) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return model.Identity{}, err
	}
	if !token.Valid {
		return model.Identity{}, model.ErrTokenInvalid
	}
	if claims.TokenType != tokenType {
		return model.Identity{}, fmt.Errorf("%w: %s", model.ErrTokenTypeMismatch, claims.TokenType)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: bad subject", model.ErrTokenInvalid)
	}

	return model.Identity{ID: id, Email: claims.Email, Role: claims.Role}, nil
}
