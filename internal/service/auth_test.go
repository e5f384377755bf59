package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stratpoint-engineering/enterprise-api/internal/apierror"
	"github.com/stratpoint-engineering/enterprise-api/internal/mocks"
	"github.com/stratpoint-engineering/enterprise-api/internal/model"
	"github.com/stratpoint-engineering/enterprise-api/internal/testutil"
	"github.com/stratpoint-engineering/enterprise-api/internal/token"
)

type authDeps struct {
	users  *mocks.UserStore
	hasher *mocks.PasswordHasher
	tokens *mocks.TokenManager
	cache  *mocks.ProfileCache
	events *mocks.EventPublisher
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestAuth(t *testing.T) (*Auth, authDeps) {
	t.Helper()

	deps := authDeps{
		users:  mocks.NewUserStore(t),
		hasher: mocks.NewPasswordHasher(t),
		tokens: mocks.NewTokenManager(t),
		cache:  mocks.NewProfileCache(t),
		events: mocks.NewEventPublisher(t),
	}
	a := NewAuth(deps.users, deps.hasher, deps.tokens, deps.cache, deps.events, testutil.MakeNoopLogger())
	a.effects.now = func() time.Time { return fixedNow }

	return a, deps
}

func eventOfType(eventType model.EventType) interface{} {
	return mock.MatchedBy(func(e model.Event) bool { return e.Type == eventType })
}

func activeUser() model.User {
	return model.User{
		ID:           uuid.New(),
		Email:        "a@b.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
		IsActive:     true,
	}
}

func TestAuth_ValidateCredentials_Success(t *testing.T) {
	a, deps := newTestAuth(t)
	user := activeUser()

	deps.users.On("GetByEmail", mock.Anything, "a@b.com").Return(user, nil).Once()
	deps.hasher.On("Compare", "hash", "secret1").Return(nil).Once()
	deps.users.On("UpdateLastLogin", mock.Anything, user.ID, fixedNow).Return(nil).Once()
	deps.cache.On("Delete", mock.Anything, user.ID).Return(nil).Once()

	got, err := a.ValidateCredentials(context.Background(), "  A@B.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, fixedNow, *got.LastLogin)
}

func TestAuth_ValidateCredentials_Failures(t *testing.T) {
	inactive := activeUser()
	inactive.IsActive = false

	tests := []struct {
		name     string
		setup    func(deps authDeps)
		wantKind apierror.Kind
		wantMsg  string
	}{
		{
			name: "unknown email",
			setup: func(deps authDeps) {
				deps.users.On("GetByEmail", mock.Anything, "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
			},
			wantKind: apierror.KindUnauthorized,
			wantMsg:  "Invalid credentials",
		},
		{
			name: "inactive user",
			setup: func(deps authDeps) {
				deps.users.On("GetByEmail", mock.Anything, "a@b.com").Return(inactive, nil).Once()
			},
			wantKind: apierror.KindUnauthorized,
			wantMsg:  "User account is inactive",
		},
		{
			name: "wrong password",
			setup: func(deps authDeps) {
				deps.users.On("GetByEmail", mock.Anything, "a@b.com").Return(activeUser(), nil).Once()
				deps.hasher.On("Compare", "hash", "secret1").Return(model.ErrInvalidCredentials).Once()
			},
			wantKind: apierror.KindUnauthorized,
			wantMsg:  "Invalid credentials",
		},
		{
			name: "store failure",
			setup: func(deps authDeps) {
				deps.users.On("GetByEmail", mock.Anything, "a@b.com").Return(model.User{}, assert.AnError).Once()
			},
			wantKind: apierror.KindInternal,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, deps := newTestAuth(t)
			tt.setup(deps)

			_, err := a.ValidateCredentials(context.Background(), "a@b.com", "secret1")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apierror.KindOf(err))
			if tt.wantMsg != "" {
				apiErr, ok := apierror.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantMsg, apiErr.Message)
			}
			deps.users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuth_Login(t *testing.T) {
	a, deps := newTestAuth(t)
	user := activeUser()

	deps.tokens.On("Issue", user.Identity()).Return(model.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil).Once()
	deps.users.On("SetRefreshTokenHash", mock.Anything, user.ID, token.HashRefreshToken("refresh")).Return(nil).Once()
	deps.events.On("Publish", mock.Anything, eventOfType(model.EventSessionLogin)).Return(nil).Once()

	res, err := a.Login(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "access", res.AccessToken)
	assert.Equal(t, "refresh", res.RefreshToken)
	assert.Equal(t, user.Profile(), res.User)
}

func TestAuth_Login_PublishFailureIsIgnored(t *testing.T) {
	a, deps := newTestAuth(t)
	user := activeUser()

	deps.tokens.On("Issue", user.Identity()).Return(model.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil).Once()
	deps.users.On("SetRefreshTokenHash", mock.Anything, user.ID, mock.Anything).Return(nil).Once()
	deps.events.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	_, err := a.Login(context.Background(), user)
	require.NoError(t, err)
}

func TestAuth_Register_Success(t *testing.T) {
	a, deps := newTestAuth(t)

	deps.users.On("GetByEmail", mock.Anything, "new@b.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.hasher.On("Hash", "secret1").Return("bcrypt-hash", nil).Once()
	deps.users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "new@b.com" &&
			u.PasswordHash == "bcrypt-hash" &&
			u.Role == model.RoleUser &&
			u.IsActive &&
			u.RefreshTokenHash == "" &&
			u.ID != uuid.Nil
	})).Return(func(_ context.Context, u model.User) (model.User, error) {
		return u, nil
	}).Once()
	deps.events.On("Publish", mock.Anything, eventOfType(model.EventUserRegistered)).Return(nil).Once()

	profile, err := a.Register(context.Background(), model.RegisterParams{
		Email:     "New@B.com",
		Password:  "secret1",
		FirstName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", profile.Email)
	assert.Equal(t, model.RoleUser, profile.Role)
	assert.Equal(t, "Ada", profile.FirstName)
}

func TestAuth_Register_EmailTaken(t *testing.T) {
	a, deps := newTestAuth(t)

	deps.users.On("GetByEmail", mock.Anything, "a@b.com").Return(activeUser(), nil).Once()

	_, err := a.Register(context.Background(), model.RegisterParams{Email: "A@b.com", Password: "secret1", FirstName: "A"})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	deps.hasher.AssertNotCalled(t, "Hash", mock.Anything)
}

func TestAuth_Register_EmailTakenAtInsert(t *testing.T) {
	a, deps := newTestAuth(t)

	deps.users.On("GetByEmail", mock.Anything, "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.hasher.On("Hash", "secret1").Return("h", nil).Once()
	deps.users.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrEmailTaken).Once()

	_, err := a.Register(context.Background(), model.RegisterParams{Email: "a@b.com", Password: "secret1", FirstName: "A"})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestAuth_ValidateRefreshToken(t *testing.T) {
	id := uuid.New()

	t.Run("mismatch is unauthorized", func(t *testing.T) {
		a, deps := newTestAuth(t)
		deps.tokens.On("ParseRefreshToken", "old").Return(model.Identity{ID: id}, nil).Once()
		deps.users.On("GetByID", mock.Anything, id).Return(model.User{
			ID: id, IsActive: true, RefreshTokenHash: token.HashRefreshToken("new"),
		}, nil).Once()

		_, err := a.ValidateRefreshToken(context.Background(), "old")
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, apierror.KindUnauthorized, apiErr.Kind)
		assert.Equal(t, "Invalid refresh token", apiErr.Message)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		a, deps := newTestAuth(t)
		deps.tokens.On("ParseRefreshToken", "tok").Return(model.Identity{ID: id}, nil).Once()
		deps.users.On("GetByID", mock.Anything, id).Return(model.User{}, assert.AnError).Once()

		_, err := a.ValidateRefreshToken(context.Background(), "tok")
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, apierror.KindInternal, apierror.KindOf(err))
	})

	t.Run("current token", func(t *testing.T) {
		a, deps := newTestAuth(t)
		deps.tokens.On("ParseRefreshToken", "tok").Return(model.Identity{ID: id}, nil).Once()
		deps.users.On("GetByID", mock.Anything, id).Return(model.User{
			ID: id, IsActive: true, RefreshTokenHash: token.HashRefreshToken("tok"),
		}, nil).Once()

		user, err := a.ValidateRefreshToken(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})
}

func TestAuth_Refresh(t *testing.T) {
	user := activeUser()
	user.RefreshTokenHash = token.HashRefreshToken("old")

	t.Run("rotates", func(t *testing.T) {
		a, deps := newTestAuth(t)
		deps.tokens.On("Issue", user.Identity()).Return(model.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil).Once()
		deps.users.On("SwapRefreshTokenHash", mock.Anything, user.ID, user.RefreshTokenHash, token.HashRefreshToken("r2")).Return(nil).Once()
		deps.events.On("Publish", mock.Anything, eventOfType(model.EventSessionRefreshed)).Return(nil).Once()

		pair, err := a.Refresh(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, model.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, pair)
	})

	t.Run("concurrent rotation conflicts", func(t *testing.T) {
		a, deps := newTestAuth(t)
		deps.tokens.On("Issue", user.Identity()).Return(model.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil).Once()
		deps.users.On("SwapRefreshTokenHash", mock.Anything, user.ID, user.RefreshTokenHash, mock.Anything).Return(model.ErrRefreshTokenStale).Once()

		pair, err := a.Refresh(context.Background(), user)
		assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
		assert.Empty(t, pair.RefreshToken)
		deps.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestAuth_Logout(t *testing.T) {
	id := uuid.New()

	t.Run("clears hash", func(t *testing.T) {
		a, deps := newTestAuth(t)
		deps.users.On("SetRefreshTokenHash", mock.Anything, id, "").Return(nil).Once()
		deps.events.On("Publish", mock.Anything, eventOfType(model.EventSessionLogout)).Return(nil).Once()

		require.NoError(t, a.Logout(context.Background(), id))
	})

	t.Run("unknown user", func(t *testing.T) {
		a, deps := newTestAuth(t)
		deps.users.On("SetRefreshTokenHash", mock.Anything, id, "").Return(model.ErrNotFound).Once()

		err := a.Logout(context.Background(), id)
		assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	})
}

func TestAuth_Authenticate(t *testing.T) {
	a, deps := newTestAuth(t)
	identity := model.Identity{ID: uuid.New(), Role: model.RoleUser}

	deps.tokens.On("ParseAccessToken", "good").Return(identity, nil).Once()
	deps.tokens.On("ParseAccessToken", "bad").Return(model.Identity{}, assert.AnError).Once()

	got, err := a.Authenticate("good")
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	_, err = a.Authenticate("bad")
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
}
