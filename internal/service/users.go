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

// Users implements user administration and profile lookups.
type Users struct {
	userStore model.UserStore
	hasher    model.PasswordHasher
	effects   sideEffects
	logger    *logger.Logger
}

func NewUsers(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	cache model.ProfileCache,
	events model.EventPublisher,
	logger *logger.Logger,
) *Users {
	return &Users{
		userStore: userStore,
		hasher:    hasher,
		effects:   sideEffects{cache: cache, events: events, logger: logger, now: time.Now},
		logger:    logger,
	}
}

// List returns all users, optionally only those with the given role.
func (u *Users) List(ctx context.Context, role model.Role) ([]model.UserProfile, error) {
	if role != "" && !role.Valid() {
		return nil, apierror.NewErrValidation(fmt.Sprintf("role must be one of admin, manager, user, guest, got %q", role))
	}

	users, err := u.userStore.List(ctx, model.UserFilter{Role: role})
	if err != nil {
		u.logger.Error("Users service: failed to list users",
			"role", string(role),
			"error", err.Error())
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	profiles := make([]model.UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}
	return profiles, nil
}

// Get returns a user profile, serving it from the cache when possible.
func (u *Users) Get(ctx context.Context, id uuid.UUID) (model.UserProfile, error) {
	if profile, ok := u.effects.cached(ctx, id); ok {
		return profile, nil
	}

	user, err := u.load(ctx, id)
	if err != nil {
		return model.UserProfile{}, err
	}

	profile := user.Profile()
	u.effects.store(ctx, profile)
	u.revalidate(ctx, profile)

	return profile, nil
}

// revalidate drops a just-cached profile when the user changed or vanished
// between the read and the cache write, so a concurrent Update or Delete
// cannot leave a stale entry behind.
func (u *Users) revalidate(ctx context.Context, cached model.UserProfile) {
	current, err := u.userStore.GetByID(ctx, cached.ID)
	if err == nil && sameVersion(current.Profile(), cached) {
		return
	}
	u.effects.invalidate(ctx, cached.ID)
}

func sameVersion(a, b model.UserProfile) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return false
	}
	if a.LastLogin == nil || b.LastLogin == nil {
		return a.LastLogin == b.LastLogin
	}
	return a.LastLogin.Equal(*b.LastLogin)
}

// Create adds a user on behalf of an administrator.
func (u *Users) Create(ctx context.Context, params model.CreateUserParams) (model.UserProfile, error) {
	email := model.NormalizeEmail(params.Email)

	role := params.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return model.UserProfile{}, apierror.NewErrValidation(fmt.Sprintf("unknown role %q", role))
	}

	if err := u.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return model.UserProfile{}, err
	}

	hash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := u.effects.now()
	user, err := u.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrEmailTaken) {
		return model.UserProfile{}, apierror.NewErrEmailIsTaken(email)
	}
	if err != nil {
		u.logger.Error("Users service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.UserProfile{}, fmt.Errorf("failed to create user: %w", err)
	}

	u.effects.publishUser(ctx, model.EventUserCreated, user)

	u.logger.Info("Users service: user created",
		"user_id", user.ID.String(),
		"role", string(user.Role))

	return user.Profile(), nil
}

// Update applies a partial update. Administrators may change any user;
// everyone else may change only their own name and email.
func (u *Users) Update(ctx context.Context, actor model.Identity, id uuid.UUID, params model.UpdateUserParams) (model.UserProfile, error) {
	if actor.Role != model.RoleAdmin {
		if actor.ID != id || params.TouchesPrivileges() {
			u.logger.Info("Users service: update forbidden",
				"actor_id", actor.ID.String(),
				"target_id", id.String())
			return model.UserProfile{}, apierror.NewErrForbidden()
		}
	}
	if params.Role != nil && !params.Role.Valid() {
		return model.UserProfile{}, apierror.NewErrValidation(fmt.Sprintf("unknown role %q", *params.Role))
	}

	user, err := u.load(ctx, id)
	if err != nil {
		return model.UserProfile{}, err
	}
	if params.Empty() {
		return user.Profile(), nil
	}

	if params.Email != nil {
		email := model.NormalizeEmail(*params.Email)
		if email != user.Email {
			if err := u.ensureEmailFree(ctx, email, id); err != nil {
				return model.UserProfile{}, err
			}
		}
		user.Email = email
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	user.UpdatedAt = u.effects.now()

	updated, err := u.userStore.Update(ctx, user)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrEmailTaken):
		return model.UserProfile{}, apierror.NewErrEmailIsTaken(user.Email)
	case errors.Is(err, model.ErrNotFound):
		return model.UserProfile{}, apierror.NewErrUserNotFound(id.String())
	default:
		u.logger.Error("Users service: failed to update user",
			"user_id", id.String(),
			"error", err.Error())
		return model.UserProfile{}, fmt.Errorf("failed to update user: %w", err)
	}

	u.effects.invalidate(ctx, id)
	u.effects.publishUser(ctx, model.EventUserUpdated, updated)

	u.logger.Info("Users service: user updated",
		"user_id", id.String(),
		"actor_id", actor.ID.String())

	return updated.Profile(), nil
}

// Delete removes a user and returns the profile it had.
func (u *Users) Delete(ctx context.Context, id uuid.UUID) (model.UserProfile, error) {
	user, err := u.load(ctx, id)
	if err != nil {
		return model.UserProfile{}, err
	}

	err = u.userStore.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.UserProfile{}, apierror.NewErrUserNotFound(id.String())
	}
	if err != nil {
		u.logger.Error("Users service: failed to delete user",
			"user_id", id.String(),
			"error", err.Error())
		return model.UserProfile{}, fmt.Errorf("failed to delete user: %w", err)
	}

	u.effects.invalidate(ctx, id)
	u.effects.publishUser(ctx, model.EventUserDeleted, user)

	u.logger.Info("Users service: user deleted",
		"user_id", id.String())

	return user.Profile(), nil
}

func (u *Users) load(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := u.userStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apierror.NewErrUserNotFound(id.String())
	}
	if err != nil {
		u.logger.Error("Users service: failed to get user",
			"user_id", id.String(),
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ensureEmailFree fails with a conflict when email belongs to a user other
// than self.
func (u *Users) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := u.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != self {
		return apierror.NewErrEmailIsTaken(email)
	}
	return nil
}
