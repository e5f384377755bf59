package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failErr != nil {
		return redis.NewStringResult("", f.failErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failErr != nil {
		return redis.NewStatusResult("", f.failErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.failErr != nil {
		return redis.NewIntResult(0, f.failErr)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestProfileCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := NewProfileCache(fake, 5*time.Minute)

	profile := model.UserProfile{
		ID:        uuid.New(),
		Email:     "a@b.com",
		Role:      model.RoleManager,
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	_, err := c.Get(ctx, profile.ID)
	require.ErrorIs(t, err, model.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, profile))
	key := "user:profile:" + profile.ID.String()
	assert.Equal(t, 5*time.Minute, fake.ttls[key])
	assert.NotContains(t, fake.data[key], "password")

	got, err := c.Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	require.NoError(t, c.Delete(ctx, profile.ID))
	_, err = c.Get(ctx, profile.ID)
	assert.ErrorIs(t, err, model.ErrCacheMiss)
}

func TestProfileCache_Errors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	fake.failErr = assert.AnError
	c := NewProfileCache(fake, time.Minute)

	_, err := c.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, model.ErrCacheMiss)

	assert.ErrorIs(t, c.Set(ctx, model.UserProfile{ID: uuid.New()}), assert.AnError)
	assert.ErrorIs(t, c.Delete(ctx, uuid.New()), assert.AnError)
}

func TestProfileCache_CorruptEntry(t *testing.T) {
	fake := newFakeRedis()
	id := uuid.New()
	fake.data["user:profile:"+id.String()] = "{not json"

	_, err := NewProfileCache(fake, time.Minute).Get(context.Background(), id)
	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c model.ProfileCache = Noop{}

	_, err := c.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrCacheMiss)
	assert.NoError(t, c.Set(ctx, model.UserProfile{}))
	assert.NoError(t, c.Delete(ctx, uuid.New()))
}
