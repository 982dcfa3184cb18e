// Package cache provides the key/value caches behind cached user lookups.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when there is no live entry for a key.
var ErrMiss = errors.New("cache miss")

// Cache stores opaque values by key with an optional time to live.
type Cache interface {
	// Get returns the value for the key or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the value, a zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the keys, missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
