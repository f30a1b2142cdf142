package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
)

// RateLimitStore keeps login attempt state in a CacheProvider so every API
// instance sees the same counters.
type RateLimitStore struct {
	cache providers.CacheProvider
}

// NewRateLimitStore creates a cache-backed rate limit store
func NewRateLimitStore(cache providers.CacheProvider) providers.RateLimitStore {
	return &RateLimitStore{cache: cache}
}

type rateLimitRecord struct {
	Failures    int       `json:"failures"`
	WindowStart time.Time `json:"window_start"`
	LockedUntil time.Time `json:"locked_until"`
}

// Get returns nil when the key has no state.
func (s *RateLimitStore) Get(ctx context.Context, key string) (*providers.RateLimitState, error) {
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, providers.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec rateLimitRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode rate limit state for %s: %w", key, err)
	}
	return &providers.RateLimitState{
		Failures:    rec.Failures,
		WindowStart: rec.WindowStart,
		LockedUntil: rec.LockedUntil,
	}, nil
}

// Put stores state. ttl is rounded up to whole seconds.
func (s *RateLimitStore) Put(ctx context.Context, key string, state *providers.RateLimitState, ttl time.Duration) error {
	raw, err := json.Marshal(rateLimitRecord{
		Failures:    state.Failures,
		WindowStart: state.WindowStart,
		LockedUntil: state.LockedUntil,
	})
	if err != nil {
		return fmt.Errorf("failed to encode rate limit state: %w", err)
	}

	seconds := int(math.Ceil(ttl.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return s.cache.Set(ctx, key, raw, seconds)
}

// Delete removes any state for key.
func (s *RateLimitStore) Delete(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}
