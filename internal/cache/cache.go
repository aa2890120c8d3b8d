// Package cache defines the key-value cache abstraction used by the
// cache-aside coordinator. Values are opaque byte payloads; encoding is the
// caller's concern.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key does not exist or has expired.
var ErrMiss = errors.New("cache: miss")

// Cache abstracts a key-value cache with TTL support. All operations are
// safe for concurrent use and must be cheap to skip when the backend is
// down; callers never branch on nil.
type Cache interface {
	// Get retrieves the value for key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes keys. Deleting an absent key is not an error.
	Del(ctx context.Context, keys ...string) error

	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// NoOp is a Cache for cacheless deployments: every read misses and every
// write succeeds without storing anything.
type NoOp struct{}

var _ Cache = NoOp{}

func (NoOp) Get(context.Context, string) ([]byte, error)              { return nil, ErrMiss }
func (NoOp) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoOp) Del(context.Context, ...string) error                     { return nil }
func (NoOp) Ping(context.Context) error                               { return nil }
func (NoOp) Close() error                                             { return nil }
