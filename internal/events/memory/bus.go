// Package memory implements the event bus with in-process channels.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"bookstand/internal/events"
)

// ErrBusClosed is returned after Close.
var ErrBusClosed = errors.New("event bus is closed")

const subscriberBuffer = 64

type subscription struct {
	collection string
	ch         chan events.Event
	done       <-chan struct{}
}

// Bus routes events between in-process publishers and subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	closed atomic.Bool
	done   chan struct{}
}

var _ events.Bus = (*Bus)(nil)

// New creates an empty in-memory bus.
func New() *Bus {
	return &Bus{subs: make(map[int]*subscription), done: make(chan struct{})}
}

// Publish delivers ev to every matching subscriber. A subscriber whose
// buffer is full is skipped rather than blocking the publisher.
func (b *Bus) Publish(_ context.Context, ev events.Event) error {
	if b.closed.Load() {
		return ErrBusClosed
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.collection != "" && sub.collection != ev.Collection {
			continue
		}
		select {
		case sub.ch <- ev:
		case <-sub.done:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber for one collection, or for everything
// when collection is empty.
func (b *Bus) Subscribe(ctx context.Context, collection string) (<-chan events.Event, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}

	sub := &subscription{
		collection: collection,
		ch:         make(chan events.Event, subscriberBuffer),
		done:       ctx.Done(),
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub.ch)
		}
		b.mu.Unlock()
	}()

	return sub.ch, nil
}

// Close closes every subscriber channel and rejects further use.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(b.done)
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
	return nil
}
