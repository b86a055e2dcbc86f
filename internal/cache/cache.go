// Package cache provides the report cache implementations: Redis when an
// address is configured, an in-process no-op otherwise.
package cache

import (
	"context"
	"time"
)

// Noop satisfies the cache interface without storing anything. Every Get is
// a miss, so callers always rebuild.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }

func (*Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (*Noop) Delete(ctx context.Context, key string) error { return nil }
