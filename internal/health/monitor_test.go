package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProber struct {
	err   error
	calls int
}

func (p *fakeProber) Probe(context.Context) error {
	p.calls++
	return p.err
}

func TestUnprobedBackendIsNotUsable(t *testing.T) {
	t.Parallel()
	m := NewMonitor(nil, time.Second)

	assert.Equal(t, Unprobed, m.State(Cache))
	assert.False(t, m.Usable(context.Background(), Cache))
}

func TestEventDrivenTransitions(t *testing.T) {
	t.Parallel()
	m := NewMonitor(nil, time.Second)
	ctx := context.Background()

	m.MarkAvailable(Cache)
	assert.True(t, m.Usable(ctx, Cache))

	m.MarkUnavailable(Cache)
	assert.False(t, m.Usable(ctx, Cache))
	assert.Equal(t, Unavailable, m.State(Cache))

	// Recovery flips it back.
	m.MarkAvailable(Cache)
	assert.True(t, m.Usable(ctx, Cache))
}

func TestProberDrivenBackendProbesEveryCall(t *testing.T) {
	t.Parallel()
	m := NewMonitor(nil, time.Second)
	ctx := context.Background()

	p := &fakeProber{}
	m.SetProber(Search, p)

	assert.True(t, m.Usable(ctx, Search))
	assert.True(t, m.Usable(ctx, Search))
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, Available, m.State(Search))

	p.err = errors.New("cluster status red")
	assert.False(t, m.Usable(ctx, Search))
	assert.Equal(t, Unavailable, m.State(Search))

	p.err = nil
	assert.True(t, m.Usable(ctx, Search))
}

func TestProberStateIgnoresStaleMarks(t *testing.T) {
	t.Parallel()
	m := NewMonitor(nil, time.Second)

	p := &fakeProber{err: errors.New("down")}
	m.SetProber(Search, p)
	m.MarkAvailable(Search)

	// The probe result wins over the stale mark.
	assert.False(t, m.Usable(context.Background(), Search))
}
