// Package cacheaside implements the read/write coordination between the
// authoritative document store and the cache. One Collection wraps one
// entity kind; the same four operations serve every kind.
//
// The discipline is strict cache-aside: reads consult the cache first and
// repopulate it from the store on a miss; writes go to the store first and
// then invalidate (never update) the affected keys. Any cache failure is
// absorbed, logged and treated as a miss or no-op.
package cacheaside

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"bookstand/internal/cache"
	"bookstand/internal/health"
)

// DefaultTTL is the fixed staleness bound for cached entries.
const DefaultTTL = 3600 * time.Second

// Collection coordinates cache-aside access for one entity collection.
type Collection[T any] struct {
	key    string
	ttl    time.Duration
	cache  cache.Cache
	health *health.Monitor
	logger *slog.Logger
}

// New creates a coordinator for the given collection key. Keys are
// namespaced "<collection>:<id>" for single entities and
// "all:<collection>" for the full listing.
func New[T any](collectionKey string, ttl time.Duration, c cache.Cache, mon *health.Monitor, logger *slog.Logger) *Collection[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection[T]{
		key:    collectionKey,
		ttl:    ttl,
		cache:  c,
		health: mon,
		logger: logger.With("component", "cacheaside", "collection", collectionKey),
	}
}

func (c *Collection[T]) entityKey(id string) string { return c.key + ":" + id }
func (c *Collection[T]) listKey() string            { return "all:" + c.key }

// ReadOne returns the cached entity when possible, loading from the store
// and repopulating the cache otherwise. A NotFound from the loader
// propagates without being cached; negative results are never stored.
func (c *Collection[T]) ReadOne(ctx context.Context, id string, load func(context.Context) (T, error)) (T, error) {
	key := c.entityKey(id)
	if v, ok := lookup[T](ctx, c, key); ok {
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.populate(ctx, key, v)
	return v, nil
}

// ReadAll is ReadOne for the whole collection listing, under "all:<key>".
func (c *Collection[T]) ReadAll(ctx context.Context, load func(context.Context) ([]T, error)) ([]T, error) {
	key := c.listKey()
	if v, ok := lookup[[]T](ctx, c, key); ok {
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.populate(ctx, key, v)
	return v, nil
}

// Create runs the store insert and invalidates the listing plus the new
// entity's key. The store write is authoritative: its error fails the
// operation, cache errors never do.
func (c *Collection[T]) Create(ctx context.Context, insert func(context.Context) (string, error)) (string, error) {
	id, err := insert(ctx)
	if err != nil {
		return "", err
	}
	c.Invalidate(ctx, id)
	return id, nil
}

// Write runs the store mutation and, on success, unconditionally
// invalidates both the entity key and the listing key. Cached values are
// never updated in place; the next read repopulates from the store.
func (c *Collection[T]) Write(ctx context.Context, id string, mutate func(context.Context) error) error {
	if err := mutate(ctx); err != nil {
		return err
	}
	c.Invalidate(ctx, id)
	return nil
}

// Delete runs the store delete and invalidates the same two keys.
// Invalidating a key that was never cached is a no-op.
func (c *Collection[T]) Delete(ctx context.Context, id string, remove func(context.Context) error) error {
	if err := remove(ctx); err != nil {
		return err
	}
	c.Invalidate(ctx, id)
	return nil
}

// Invalidate drops the entity and listing keys, best-effort.
func (c *Collection[T]) Invalidate(ctx context.Context, id string) {
	if !c.health.Usable(ctx, health.Cache) {
		return
	}
	if err := c.cache.Del(ctx, c.entityKey(id), c.listKey()); err != nil {
		c.logger.Warn("cache invalidation failed", "id", id, "error", err)
	}
}

// lookup reads and decodes one cached value. Any failure, including a
// corrupt payload, degrades to a miss; corrupt entries are dropped so they
// cannot shadow the store forever.
func lookup[V any, T any](ctx context.Context, c *Collection[T], key string) (V, bool) {
	var zero V
	if !c.health.Usable(ctx, health.Cache) {
		return zero, false
	}

	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return zero, false
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("dropping corrupt cache entry", "key", key, "error", err)
		if delErr := c.cache.Del(ctx, key); delErr != nil {
			c.logger.Warn("cache invalidation failed", "key", key, "error", delErr)
		}
		return zero, false
	}
	return v, true
}

// populate stores a freshly loaded value, fire-and-forget.
func (c *Collection[T]) populate(ctx context.Context, key string, v any) {
	if !c.health.Usable(ctx, health.Cache) {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}
