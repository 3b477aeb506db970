package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-nass/task-management/internal/shared"
)

func newTestLimiter(t *testing.T, max int) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginLimiter(client, max, 15*time.Minute), mr
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "ann@x.com"))
	require.NoError(t, limiter.Fail(ctx, "ann@x.com"))
	require.NoError(t, limiter.Allow(ctx, "ann@x.com"))
	require.NoError(t, limiter.Fail(ctx, "ANN@x.com "))

	err := limiter.Allow(ctx, "ann@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrTooManyAttempts))

	require.NoError(t, limiter.Allow(ctx, "bob@x.com"))
}

func TestLoginLimiterWindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Fail(ctx, "ann@x.com"))
	assert.Error(t, limiter.Allow(ctx, "ann@x.com"))
	assert.Equal(t, 15*time.Minute, mr.TTL(limiterKey("ann@x.com")))

	require.NoError(t, limiter.Fail(ctx, "ann@x.com"))
	assert.Equal(t, 15*time.Minute, mr.TTL(limiterKey("ann@x.com")), "window starts at first failure")

	mr.FastForward(16 * time.Minute)
	assert.NoError(t, limiter.Allow(ctx, "ann@x.com"))
}

func TestLoginLimiterReset(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Fail(ctx, "ann@x.com"))
	require.NoError(t, limiter.Reset(ctx, "ann@x.com"))
	assert.NoError(t, limiter.Allow(ctx, "ann@x.com"))
}

func TestNilLoginLimiterAllowsEverything(t *testing.T) {
	var limiter *LoginLimiter
	ctx := context.Background()
	assert.NoError(t, limiter.Allow(ctx, "ann@x.com"))
	assert.NoError(t, limiter.Fail(ctx, "ann@x.com"))
	assert.NoError(t, limiter.Reset(ctx, "ann@x.com"))

	assert.Nil(t, NewLoginLimiter(nil, 5, time.Minute))
	assert.Nil(t, NewLoginLimiter(redis.NewClient(&redis.Options{}), 0, time.Minute))
}
