package model

import "github.com/google/uuid"

// TokenManager signs and verifies access and refresh tokens.
type TokenManager interface {
	Issue(identity Identity) (TokenPair, error)
	ParseAccessToken(token string) (Identity, error)
	ParseRefreshToken(token string) (Identity, error)
}

// Identity is the claim set shared by access and refresh tokens.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  Role
}

// TokenPair is a freshly minted access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}
