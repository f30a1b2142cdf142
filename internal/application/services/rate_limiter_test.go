package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter() (*services.RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Now()}
	limiter := services.NewRateLimiter(services.NewMemoryRateLimitStore(), services.DefaultRateLimiterConfig()).
		WithClock(clock.Now)
	return limiter, clock
}

func TestRateLimiter_LocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	limiter, clock := newTestLimiter()

	for i := 0; i < 4; i++ {
		require.NoError(t, limiter.Record(ctx, "user@example.com", false))
		decision, err := limiter.Check(ctx, "user@example.com")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "attempt %d", i+1)
	}

	require.NoError(t, limiter.Record(ctx, "user@example.com", false))
	decision, err := limiter.Check(ctx, "user@example.com")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, clock.Now().Add(15*time.Minute), decision.LockedUntil)

	other, err := limiter.Check(ctx, "other@example.com")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRateLimiter_LockExpires(t *testing.T) {
	ctx := context.Background()
	limiter, clock := newTestLimiter()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Record(ctx, "k", false))
	}
	decision, _ := limiter.Check(ctx, "k")
	assert.False(t, decision.Allowed)

	clock.Advance(15 * time.Minute)
	decision, err := limiter.Check(ctx, "k")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	require.NoError(t, limiter.Record(ctx, "k", false))
	decision, _ = limiter.Check(ctx, "k")
	assert.True(t, decision.Allowed, "a fresh window starts after the lock")
}

func TestRateLimiter_SuccessClears(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter()

	for i := 0; i < 4; i++ {
		require.NoError(t, limiter.Record(ctx, "k", false))
	}
	require.NoError(t, limiter.Record(ctx, "k", true))
	for i := 0; i < 4; i++ {
		require.NoError(t, limiter.Record(ctx, "k", false))
	}

	decision, err := limiter.Check(ctx, "k")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	ctx := context.Background()
	limiter, clock := newTestLimiter()

	for i := 0; i < 4; i++ {
		require.NoError(t, limiter.Record(ctx, "k", false))
	}
	clock.Advance(16 * time.Minute)
	require.NoError(t, limiter.Record(ctx, "k", false))

	decision, err := limiter.Check(ctx, "k")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryRateLimitStore_UnknownKey(t *testing.T) {
	state, err := services.NewMemoryRateLimitStore().Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, state)
}
