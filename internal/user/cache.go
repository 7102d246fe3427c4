package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores stripped profiles by user id. Implementations never hold the
// password hash.
type Cache interface {
	Get(ctx context.Context, id int64) (*User, error)
	Set(ctx context.Context, u *User) error
	Invalidate(ctx context.Context, id int64) error
}

// RedisCache is a cache-aside profile store in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// getProfileKey generates the Redis key for a cached profile
func getProfileKey(id int64) string {
	return fmt.Sprintf("user_profile:%d", id)
}

// Get returns ErrCacheMiss when nothing is cached for id.
func (c *RedisCache) Get(ctx context.Context, id int64) (*User, error) {
	data, err := c.client.Get(ctx, getProfileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cached profile: %w", err)
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to decode cached profile: %w", err)
	}
	return &u, nil
}

func (c *RedisCache) Set(ctx context.Context, u *User) error {
	// PasswordHash is tagged json:"-" and never reaches Redis
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := c.client.Set(ctx, getProfileKey(u.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, getProfileKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached profile: %w", err)
	}
	return nil
}

// NoopCache is used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, int64) (*User, error) { return nil, ErrCacheMiss }
func (NoopCache) Set(context.Context, *User) error { return nil }
func (NoopCache) Invalidate(context.Context, int64) error { return nil }
