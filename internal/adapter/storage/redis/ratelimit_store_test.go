package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_UnderLimit(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := store.Allow(ctx, "user-1", 10, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := store.Allow(ctx, "user-1", 10, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Remaining)
}

func TestRateLimitStore_OverLimit(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Allow(ctx, "user-2", 3, time.Minute)
		require.NoError(t, err)
	}

	result, err := store.Allow(ctx, "user-2", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(0), result.Remaining)
}

func TestRateLimitStore_SeparateKeys(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Allow(ctx, "user-a", 3, time.Minute)
		require.NoError(t, err)
	}

	result, err := store.Allow(ctx, "user-b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "limits are per key")
}
