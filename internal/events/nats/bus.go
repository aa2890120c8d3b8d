// Package nats implements the event bus on core NATS. Delivery is
// at-most-once, matching the fire-and-forget publishing contract.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"bookstand/internal/events"
	"bookstand/internal/events/config"
)

const subscriberBuffer = 64

// Bus publishes change events over a NATS connection.
type Bus struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

var _ events.Bus = (*Bus)(nil)

// Connect is a variable to allow mocking in tests.
var Connect = func(url string, opts ...nats.Option) (*nats.Conn, error) {
	return nats.Connect(url, opts...)
}

// New dials the NATS server and returns a connected bus.
func New(cfg config.Config, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := Connect(cfg.URL,
		nats.Name("bookstand-events"),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", cfg.URL, err)
	}
	return &Bus{
		conn:   conn,
		prefix: cfg.SubjectPrefix,
		logger: logger.With("component", "events"),
	}, nil
}

func (b *Bus) subject(collection string) string {
	if collection == "" {
		collection = ">"
	}
	return b.prefix + ".events." + collection
}

// Publish sends the event as JSON on the collection's subject.
func (b *Bus) Publish(_ context.Context, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return b.conn.Publish(b.subject(ev.Collection), data)
}

// Subscribe delivers events for one collection, or for every collection
// when collection is empty.
func (b *Bus) Subscribe(ctx context.Context, collection string) (<-chan events.Event, error) {
	out := make(chan events.Event, subscriberBuffer)

	sub, err := b.conn.Subscribe(b.subject(collection), func(msg *nats.Msg) {
		var ev events.Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			b.logger.Warn("Dropping malformed event", "subject", msg.Subject, "error", err)
			return
		}
		select {
		case out <- ev:
		case <-ctx.Done():
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", b.subject(collection), err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			b.logger.Warn("Unsubscribe failed", "subject", b.subject(collection), "error", err)
		}
		close(out)
	}()

	return out, nil
}

// Close drains and closes the connection.
func (b *Bus) Close() error {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
		return err
	}
	return nil
}
