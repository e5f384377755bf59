// Package memory is a process-local UserStore for development and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository keeps users in a map guarded by a single mutex, which also
// makes the refresh hash swap atomic.
type UserRepository struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]model.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]model.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return model.User{}, model.ErrEmailTaken
	}

	r.byID[user.ID] = clone(user)
	r.byEmail[user.Email] = user.ID

	return clone(user), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return clone(user), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]model.User, 0, len(r.byID))
	for _, user := range r.byID {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		users = append(users, clone(user))
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.String() < users[j].ID.String()
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

// Update writes the mutable profile fields of user. Credentials, last login
// and the refresh hash are left as stored.
func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return model.User{}, model.ErrNotFound
	}

	if user.Email != stored.Email {
		if _, taken := r.byEmail[user.Email]; taken {
			return model.User{}, model.ErrEmailTaken
		}
		delete(r.byEmail, stored.Email)
		r.byEmail[user.Email] = user.ID
	}

	stored.Email = user.Email
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Role = user.Role
	stored.IsActive = user.IsActive
	stored.UpdatedAt = user.UpdatedAt
	r.byID[user.ID] = stored

	return clone(stored), nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return model.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, user.Email)

	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.mutate(ctx, id, func(u *model.User) error {
		u.LastLogin = &at
		return nil
	})
}

func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.mutate(ctx, id, func(u *model.User) error {
		u.RefreshTokenHash = hash
		return nil
	})
}

func (r *UserRepository) SwapRefreshTokenHash(ctx context.Context, id uuid.UUID, expected, next string) error {
	err := r.mutate(ctx, id, func(u *model.User) error {
		if expected == "" || u.RefreshTokenHash != expected {
			return model.ErrRefreshTokenStale
		}
		u.RefreshTokenHash = next
		return nil
	})
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrRefreshTokenStale
	}
	return err
}

func (r *UserRepository) mutate(ctx context.Context, id uuid.UUID, fn func(u *model.User) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return model.ErrNotFound
	}
	if err := fn(&user); err != nil {
		return err
	}
	r.byID[id] = user

	return nil
}

func clone(u model.User) model.User {
	if u.LastLogin != nil {
		t := *u.LastLogin
		u.LastLogin = &t
	}
	return u
}
