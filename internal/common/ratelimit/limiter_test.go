package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubspot-connector/internal/redis"
)

func TestConfigValidate(t *testing.T) {
	config := Config{Enabled: true, Limit: 5, Window: time.Second}
	require.NoError(t, config.Validate())
	assert.Equal(t, "ratelimit:", config.KeyPrefix)
	assert.Equal(t, 10000, config.MaxKeys)
	assert.Equal(t, 5*time.Minute, config.CleanupPeriod)

	assert.Error(t, (&Config{Enabled: true, Limit: 0, Window: time.Second}).Validate())
	assert.Error(t, (&Config{Enabled: true, Limit: 1, Window: 0}).Validate())
	assert.NoError(t, (&Config{Enabled: false}).Validate())
}

func TestLocalLimiter(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{Enabled: true, Limit: 3, Window: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "identity:o:u")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 3, decision.Limit)
		assert.Equal(t, 2-i, decision.Remaining)
	}

	decision, err := limiter.Allow(ctx, "identity:o:u")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, decision.RetryAfter, 20*time.Second)

	decision, err = limiter.Allow(ctx, "identity:o:other")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "keys have independent budgets")

	assert.Equal(t, "local", limiter.Name())
	assert.NoError(t, limiter.Health())
}

func TestLocalLimiter_Refill(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{Enabled: true, Limit: 2, Window: 100 * time.Millisecond})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, _ := limiter.Allow(ctx, "k")
		assert.True(t, d.Allowed)
	}
	d, _ := limiter.Allow(ctx, "k")
	assert.False(t, d.Allowed)

	time.Sleep(60 * time.Millisecond)
	d, _ = limiter.Allow(ctx, "k")
	assert.True(t, d.Allowed)
}

func TestLocalLimiter_Disabled(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{Enabled: false, Limit: 1})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		d, err := limiter.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}

func TestLocalLimiter_Cleanup(t *testing.T) {
	l, err := NewLocalLimiter(Config{Enabled: true, Limit: 1, Window: time.Second, MaxKeys: 5, CleanupPeriod: 10 * time.Millisecond})
	require.NoError(t, err)
	limiter := l.(*localLimiter)

	for i := 0; i < 5; i++ {
		_, _ = limiter.Allow(context.Background(), fmt.Sprintf("key-%d", i))
	}
	assert.Equal(t, 5, limiter.activeKeys())

	time.Sleep(20 * time.Millisecond)
	_, _ = limiter.Allow(context.Background(), "fresh")
	assert.Equal(t, 1, limiter.activeKeys())
}

func TestDistributedLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	limiter, err := NewDistributedLimiter(Config{Enabled: true, Limit: 2, Window: time.Minute}, client)
	require.NoError(t, err)
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "identity:o:u")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d, err = limiter.Allow(ctx, "identity:o:u")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, err = limiter.Allow(ctx, "identity:o:u")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)

	assert.True(t, mr.Exists("ratelimit:identity:o:u"))
	assert.Equal(t, "redis", limiter.Name())
	assert.NoError(t, limiter.Health())

	mr.Close()
	_, err = limiter.Allow(ctx, "identity:o:u")
	assert.Error(t, err)
	assert.Error(t, limiter.Health())
}

func TestNewDistributedLimiter_RequiresClient(t *testing.T) {
	_, err := NewDistributedLimiter(Config{Enabled: true, Limit: 1, Window: time.Second}, nil)
	assert.Error(t, err)
}
