package catalog

import (
	"context"
	"log/slog"
	"time"

	"bookstand/internal/cache/cacheaside"
	"bookstand/internal/events"
	"bookstand/internal/search"
	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

// resource is the shared read/write plumbing for one entity kind. The
// entity services layer input validation and reference checks on top.
type resource[T any] struct {
	collection string
	store      storage.DocumentStore
	cached     *cacheaside.Collection[T]
	mirror     *search.Mirror
	bus        events.Bus
	logger     *slog.Logger
}

func newResource[T any](collection string, deps Deps, mirror *search.Mirror) *resource[T] {
	return &resource[T]{
		collection: collection,
		store:      deps.Store,
		cached:     cacheaside.New[T](collection, deps.CacheTTL, deps.Cache, deps.Health, deps.Logger),
		mirror:     mirror,
		bus:        deps.Bus,
		logger:     deps.Logger.With("component", "catalog", "collection", collection),
	}
}

func (r *resource[T]) get(ctx context.Context, id string) (T, error) {
	return r.cached.ReadOne(ctx, id, func(ctx context.Context) (T, error) {
		var v T
		err := r.store.GetByID(ctx, r.collection, id, &v)
		return v, err
	})
}

func (r *resource[T]) list(ctx context.Context) ([]T, error) {
	return r.cached.ReadAll(ctx, func(ctx context.Context) ([]T, error) {
		var out []T
		if err := r.store.Find(ctx, r.collection, model.Query{}, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func (r *resource[T]) create(ctx context.Context, doc T) (T, error) {
	var zero T
	id, err := r.cached.Create(ctx, func(ctx context.Context) (string, error) {
		return r.store.Insert(ctx, r.collection, doc)
	})
	if err != nil {
		return zero, err
	}
	created, err := r.get(ctx, id)
	if err != nil {
		return zero, err
	}
	r.mirror.OnCreate(ctx, r.collection, id, created)
	r.publish(ctx, events.TypeCreated, id)
	return created, nil
}

// update applies a partial set. An empty set is a plain read.
func (r *resource[T]) update(ctx context.Context, id string, set map[string]any) (T, error) {
	if len(set) == 0 {
		return r.get(ctx, id)
	}
	var zero T
	err := r.cached.Write(ctx, id, func(ctx context.Context) error {
		return r.store.UpdateByID(ctx, r.collection, id, set)
	})
	if err != nil {
		return zero, err
	}
	updated, err := r.get(ctx, id)
	if err != nil {
		return zero, err
	}
	r.mirror.OnUpdate(ctx, r.collection, id, updated)
	r.publish(ctx, events.TypeUpdated, id)
	return updated, nil
}

func (r *resource[T]) remove(ctx context.Context, id string) error {
	err := r.cached.Delete(ctx, id, func(ctx context.Context) error {
		return r.store.DeleteByID(ctx, r.collection, id)
	})
	if err != nil {
		return err
	}
	r.mirror.OnDelete(ctx, r.collection, id)
	r.publish(ctx, events.TypeDeleted, id)
	return nil
}

// publish emits a change event. Failures are absorbed: the write already
// succeeded and the bus is an accelerant like the cache and the index.
func (r *resource[T]) publish(ctx context.Context, typ events.Type, id string) {
	ev := events.Event{
		Collection: r.collection,
		ID:         id,
		Type:       typ,
		Timestamp:  time.Now().UTC(),
	}
	if err := r.bus.Publish(ctx, ev); err != nil {
		r.logger.Warn("Change event dropped", "type", typ, "id", id, "error", err)
	}
}

// put adds a pointer field to a partial-update set when it was provided.
func put[T any](set map[string]any, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}
