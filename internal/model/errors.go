package model

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrRefreshTokenStale  = errors.New("refresh token already rotated")
	ErrCacheMiss          = errors.New("cache miss")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenTypeMismatch  = errors.New("token type mismatch")
	ErrRefreshNotActive   = errors.New("no active refresh token")
	ErrRefreshMismatch    = errors.New("refresh token mismatch")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
