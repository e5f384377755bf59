// Package cache stores sanitized user profiles in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

const profileKeyPrefix = "user:profile:"

var _ model.ProfileCache = (*ProfileCache)(nil)

// redisAPI is the subset of *redis.Client used by the cache.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// ProfileCache keeps JSON encoded profiles under user:profile:<id>.
type ProfileCache struct {
	client redisAPI
	ttl    time.Duration
}

func NewProfileCache(client redisAPI, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func (c *ProfileCache) Get(ctx context.Context, id uuid.UUID) (model.UserProfile, error) {
	raw, err := c.client.Get(ctx, profileKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.UserProfile{}, model.ErrCacheMiss
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to get cached profile: %w", err)
	}

	var profile model.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to decode cached profile: %w", err)
	}

	return profile, nil
}

func (c *ProfileCache) Set(ctx context.Context, profile model.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := c.client.Set(ctx, profileKey(profile.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

func (c *ProfileCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, profileKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to evict profile: %w", err)
	}
	return nil
}

func profileKey(id uuid.UUID) string {
	return profileKeyPrefix + id.String()
}
