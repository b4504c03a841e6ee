// Package cache provides the byte-oriented read-through cache used by the
// trip service. Implementations log their own backend failures: a cache that
// cannot be reached behaves like an empty one.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values under string keys.
type Cache interface {
	// Get returns the value stored under key. ok is false on a miss or a
	// backend failure.
	Get(ctx context.Context, key string) (val []byte, ok bool)

	// Set stores val under key for ttl.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string)

	// Incr atomically increments the integer stored under key and returns the
	// new value. Keys written by Incr never expire.
	Incr(ctx context.Context, key string) (int64, error)
}

// Nop is a Cache that stores nothing.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) {}
func (Nop) Delete(context.Context, string)                     {}
func (Nop) Incr(context.Context, string) (int64, error)        { return 0, nil }
