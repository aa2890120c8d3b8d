// Package events defines the change-event bus. Every successful catalog
// write publishes one event after the store has accepted it; publishing is
// fire-and-forget and never affects the outcome of the write itself.
package events

import (
	"context"
	"time"
)

// Type classifies a change event.
type Type string

const (
	TypeCreated Type = "created"
	TypeUpdated Type = "updated"
	TypeDeleted Type = "deleted"
)

// Event describes one committed change to a document.
type Event struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

// Bus publishes and delivers change events.
type Bus interface {
	// Publish sends the event to all subscribers of its collection.
	Publish(ctx context.Context, ev Event) error

	// Subscribe returns a channel of events for one collection, or for
	// every collection when collection is empty. The channel closes when
	// ctx is cancelled or the bus is closed.
	Subscribe(ctx context.Context, collection string) (<-chan Event, error)

	// Close releases resources and closes all subscriber channels.
	Close() error
}
