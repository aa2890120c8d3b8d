package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstand/internal/events"
	"bookstand/pkg/model"
)

func receive(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed before delivery")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func TestPublishReachesCollectionSubscriber(t *testing.T) {
	t.Parallel()
	bus := New()
	defer bus.Close()

	ctx := context.Background()
	books, err := bus.Subscribe(ctx, model.CollectionBooks)
	require.NoError(t, err)
	all, err := bus.Subscribe(ctx, "")
	require.NoError(t, err)

	ev := events.Event{
		Collection: model.CollectionBooks,
		ID:         "b1",
		Type:       events.TypeCreated,
		Timestamp:  time.Now(),
	}
	require.NoError(t, bus.Publish(ctx, ev))

	assert.Equal(t, "b1", receive(t, books).ID)
	assert.Equal(t, events.TypeCreated, receive(t, all).Type)
}

func TestPublishSkipsOtherCollections(t *testing.T) {
	t.Parallel()
	bus := New()
	defer bus.Close()

	ctx := context.Background()
	authors, err := bus.Subscribe(ctx, model.CollectionAuthors)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, events.Event{
		Collection: model.CollectionReviews,
		ID:         "r1",
		Type:       events.TypeDeleted,
	}))

	select {
	case ev := <-authors:
		t.Fatalf("unexpected delivery: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelledSubscriberIsRemoved(t *testing.T) {
	t.Parallel()
	bus := New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, model.CollectionBooks)
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "channel should close after cancel")

	require.NoError(t, bus.Publish(context.Background(), events.Event{
		Collection: model.CollectionBooks,
		ID:         "b1",
	}))
}

func TestCloseRejectsFurtherUse(t *testing.T) {
	t.Parallel()
	bus := New()
	ch, err := bus.Subscribe(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	_, ok := <-ch
	assert.False(t, ok)

	assert.ErrorIs(t, bus.Publish(context.Background(), events.Event{}), ErrBusClosed)
	_, err = bus.Subscribe(context.Background(), "")
	assert.ErrorIs(t, err, ErrBusClosed)
}
