package redis

import (
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"bookstand/internal/health"
)

func TestMonitorHookObserve(t *testing.T) {
	t.Parallel()
	mon := health.NewMonitor(nil, time.Second)
	h := monitorHook{mon: mon}

	h.observe(nil)
	assert.Equal(t, health.Available, mon.State(health.Cache))

	h.observe(errors.New("i/o timeout"))
	assert.Equal(t, health.Unavailable, mon.State(health.Cache))

	// A key miss is not a connection failure.
	h.observe(redis.Nil)
	assert.Equal(t, health.Available, mon.State(health.Cache))
}
