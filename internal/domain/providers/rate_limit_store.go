package providers

import (
	"context"
	"time"
)

// RateLimitState is the failure history of one rate-limited key.
type RateLimitState struct {
	Failures    int       `json:"failures"`
	WindowStart time.Time `json:"window_start"`
	LockedUntil time.Time `json:"locked_until,omitempty"`
}

// RateLimitStore persists rate limit state. Get returns nil, nil for unknown keys.
type RateLimitStore interface {
	Get(ctx context.Context, key string) (*RateLimitState, error)
	Put(ctx context.Context, key string, state *RateLimitState, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
