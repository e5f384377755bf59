package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for identity records.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// SetRefreshTokenHash overwrites the stored hash unconditionally. An empty
	// hash clears it.
	SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash string) error
	// SwapRefreshTokenHash replaces the stored hash only if it still equals
	// expected, returning ErrRefreshTokenStale otherwise.
	SwapRefreshTokenHash(ctx context.Context, id uuid.UUID, expected, next string) error
}

// Role enumerates authorization roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
	RoleGuest   Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleGuest:
		return true
	}
	return false
}

// User represents a stored identity with authentication material.
type User struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	Role             Role
	IsActive         bool
	LastLogin        *time.Time
	RefreshTokenHash string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Identity is the subset of a user carried inside signed tokens.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Profile returns the externally visible projection of the user.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserProfile is the sanitized view of a user. It never carries the password
// hash or the refresh token hash.
type UserProfile struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// UserFilter narrows List results. Zero value lists everyone.
type UserFilter struct {
	Role Role
}

// CreateUserParams contains parameters to create a user.
type CreateUserParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      Role
}

// UpdateUserParams is a partial update; nil fields are left untouched.
type UpdateUserParams struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *Role
	IsActive  *bool
}

// Empty reports whether the update changes nothing.
func (p UpdateUserParams) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.Role == nil && p.IsActive == nil
}

// TouchesPrivileges reports whether the update changes role or activation.
func (p UpdateUserParams) TouchesPrivileges() bool {
	return p.Role != nil || p.IsActive != nil
}

// NormalizeEmail lowercases and trims an email address. Emails are compared
// and stored in this form only.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
