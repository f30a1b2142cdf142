//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/adapters/cache"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
)

func TestRedisCacheAdapterIntegration(t *testing.T) {
	redisClient := newTestRedisClient(t)
	adapter := cache.NewRedisAdapter(redisClient, nil)
	ctx := context.Background()

	key := "it:cache:" + uuid.NewString()
	defer adapter.Delete(ctx, key)

	_, err := adapter.Get(ctx, key)
	require.Error(t, err)
	assert.True(t, errors.Is(err, providers.ErrCacheMiss))

	require.NoError(t, adapter.Set(ctx, key, []byte(`{"ok":true}`), 60))

	got, err := adapter.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(got))

	exists, err := adapter.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, adapter.Delete(ctx, key))
	exists, err = adapter.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisRateLimitStoreIntegration(t *testing.T) {
	redisClient := newTestRedisClient(t)
	store := cache.NewRateLimitStore(cache.NewRedisAdapter(redisClient, nil))
	ctx := context.Background()

	limiter := services.NewRateLimiter(store, services.RateLimiterConfig{
		MaxAttempts:     2,
		Window:          time.Minute,
		LockoutDuration: time.Minute,
	})

	key := "it-" + uuid.NewString() + "@example.com"
	defer store.Delete(ctx, key)

	decision, err := limiter.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	require.NoError(t, limiter.Record(ctx, key, false))
	require.NoError(t, limiter.Record(ctx, key, false))

	decision, err = limiter.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.LockedUntil.After(time.Now()))

	require.NoError(t, limiter.Record(ctx, key, true))
	decision, err = limiter.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
