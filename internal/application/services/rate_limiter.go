package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
)

// RateLimiterConfig holds attempt limits.
type RateLimiterConfig struct {
	MaxAttempts     int
	Window          time.Duration
	LockoutDuration time.Duration
}

// DefaultRateLimiterConfig allows 5 failures per 15 minutes, then locks for 15 minutes.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		MaxAttempts:     5,
		Window:          15 * time.Minute,
		LockoutDuration: 15 * time.Minute,
	}
}

// RateLimitDecision is the answer to Check.
type RateLimitDecision struct {
	Allowed     bool      `json:"allowed"`
	LockedUntil time.Time `json:"locked_until,omitempty"`
}

// RateLimiter counts failed attempts per key and locks keys that fail too often.
// State lives in the injected store so instances can share it.
type RateLimiter struct {
	store providers.RateLimitStore
	cfg   RateLimiterConfig
	now   func() time.Time
}

// NewRateLimiter creates a limiter. Zero config fields take the defaults.
func NewRateLimiter(store providers.RateLimitStore, cfg RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	return &RateLimiter{store: store, cfg: cfg, now: time.Now}
}

// WithClock replaces the time source.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// Check reports whether key may attempt now.
func (l *RateLimiter) Check(ctx context.Context, key string) (RateLimitDecision, error) {
	state, err := l.store.Get(ctx, key)
	if err != nil {
		return RateLimitDecision{}, fmt.Errorf("failed to read rate limit state: %w", err)
	}
	if state != nil && l.now().Before(state.LockedUntil) {
		return RateLimitDecision{Allowed: false, LockedUntil: state.LockedUntil}, nil
	}
	return RateLimitDecision{Allowed: true}, nil
}

// Record registers an attempt. Success clears the key's history.
func (l *RateLimiter) Record(ctx context.Context, key string, success bool) error {
	if success {
		return l.store.Delete(ctx, key)
	}

	now := l.now()
	state, err := l.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read rate limit state: %w", err)
	}

	expiredLock := state != nil && !state.LockedUntil.IsZero() && !now.Before(state.LockedUntil)
	if state == nil || expiredLock || now.Sub(state.WindowStart) >= l.cfg.Window {
		state = &providers.RateLimitState{WindowStart: now}
	}

	state.Failures++
	ttl := l.cfg.Window - now.Sub(state.WindowStart)
	if state.Failures >= l.cfg.MaxAttempts {
		state.LockedUntil = now.Add(l.cfg.LockoutDuration)
		ttl = l.cfg.LockoutDuration
	}

	return l.store.Put(ctx, key, state, ttl)
}

// MemoryRateLimitStore keeps state in process memory.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]memoryRateEntry
	now     func() time.Time
}

type memoryRateEntry struct {
	state     providers.RateLimitState
	expiresAt time.Time
}

// NewMemoryRateLimitStore creates an empty in-memory store.
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		entries: make(map[string]memoryRateEntry),
		now:     time.Now,
	}
}

func (s *MemoryRateLimitStore) Get(_ context.Context, key string) (*providers.RateLimitState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

func (s *MemoryRateLimitStore) Put(_ context.Context, key string, state *providers.RateLimitState, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryRateEntry{state: *state}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *MemoryRateLimitStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
