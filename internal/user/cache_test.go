package user

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCache_RoundTripStripsPasswordHash(t *testing.T) {
	cache, mr := setupRedisCache(t)
	ctx := context.Background()

	u := &User{
		ID:           11,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$secret",
		Personal:     PersonalInfo{FirstName: "Alice", LastName: "Liddell"},
	}
	require.NoError(t, cache.Set(ctx, u))

	raw, err := mr.Get("user_profile:11")
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret")
	assert.NotContains(t, raw, "password")

	got, err := cache.Get(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice", got.Personal.FirstName)
	assert.Empty(t, got.PasswordHash)

	assert.Equal(t, time.Minute, mr.TTL("user_profile:11"))
}

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := setupRedisCache(t)

	_, err := cache.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Invalidate(t *testing.T) {
	cache, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &User{ID: 4, Username: "bob"}))
	require.NoError(t, cache.Invalidate(ctx, 4))

	assert.False(t, mr.Exists("user_profile:4"))
	_, err := cache.Get(ctx, 4)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Expires(t *testing.T) {
	cache, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &User{ID: 5}))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, 5)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	cache, mr := setupRedisCache(t)

	require.NoError(t, mr.Set("user_profile:6", "{not json"))

	_, err := cache.Get(context.Background(), 6)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNoopCache(t *testing.T) {
	var c Cache = NoopCache{}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, &User{ID: 1}))
	_, err := c.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Invalidate(ctx, 1))
}
