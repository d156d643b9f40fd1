package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourfuture/platform/pkg/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := NewRedisLimiter(setupTestRedis(t), testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, UserKey(42), 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestRedisLimiter_BlocksWhenExceeded(t *testing.T) {
	limiter := NewRedisLimiter(setupTestRedis(t), testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, UserKey(43), 2, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i < 2, result.Allowed)
	}
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, IPKey("10.0.0.1"), 2, 100*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	_, err := limiter.Check(ctx, IPKey("10.0.0.1"), 2, 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrLimitExceeded)

	time.Sleep(120 * time.Millisecond)

	result, err := limiter.Check(ctx, IPKey("10.0.0.1"), 2, 100*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestAdaptiveLimiter_FallsBackOnRedisFailure(t *testing.T) {
	broken := NewRedisLimiter(nil, testLogger())
	limiter := NewAdaptiveLimiter(broken, NewMemoryLimiter(), testLogger())

	result, err := limiter.Check(context.Background(), UserKey(44), 4, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRules_Defaults(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{Enabled: true, Whitelist: []int64{7}})

	limit, window := rules.PerUserLimit()
	assert.Equal(t, DefaultPerUserLimit, limit)
	assert.Equal(t, DefaultPerUserWindow, window)
	assert.True(t, rules.IsWhitelisted(7))
	assert.False(t, rules.IsWhitelisted(8))
}
