// Package redis implements cache.Cache on Redis. Connection-lifecycle
// events feed the health monitor through client hooks, so availability
// checks on the read path never touch the network.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"bookstand/internal/cache"
	"bookstand/internal/cache/config"
	"bookstand/internal/health"
)

// Client is a Redis-backed cache.
type Client struct {
	rdb       *redis.Client
	opTimeout time.Duration
	logger    *slog.Logger
	stop      chan struct{}
}

var _ cache.Cache = (*Client)(nil)

// New builds the client and attempts the initial connection. A failed
// initial ping leaves the backend marked unavailable and is reported
// through the returned error, but the client stays functional: a watchdog
// re-probes while the backend is down so it can recover without restarts.
func New(ctx context.Context, cfg config.Config, mon *health.Monitor, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "cache")

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.OpTimeout.Std(),
		ReadTimeout:  cfg.OpTimeout.Std(),
		WriteTimeout: cfg.OpTimeout.Std(),
	})
	rdb.AddHook(monitorHook{mon: mon})

	c := &Client{
		rdb:       rdb,
		opTimeout: cfg.OpTimeout.Std(),
		logger:    logger,
		stop:      make(chan struct{}),
	}

	err := c.Ping(ctx)
	if err != nil {
		logger.Warn("initial cache connection failed, continuing without cache", "addr", cfg.Addr, "error", err)
	}

	go c.watchdog(mon, cfg.ProbeInterval.Std())

	return c, err
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrMiss
	}
	return val, err
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	close(c.stop)
	return c.rdb.Close()
}

// bound caps an operation with the accelerant timeout so a slow cache
// degrades latency instead of stalling the request.
func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opTimeout)
}

// watchdog re-probes a down backend. With cache-aside, an unusable cache
// receives no traffic, so without this no command would ever flip the
// state back to available.
func (c *Client) watchdog(mon *health.Monitor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if mon.State(health.Cache) == health.Available {
				continue
			}
			// The ping's outcome reaches the monitor via the hook.
			_ = c.Ping(context.Background())
		}
	}
}

// monitorHook translates client events into health transitions. redis.Nil
// is a miss, not a failure.
type monitorHook struct {
	mon *health.Monitor
}

var _ redis.Hook = monitorHook{}

func (h monitorHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.mon.MarkUnavailable(health.Cache)
		} else {
			h.mon.MarkAvailable(health.Cache)
		}
		return conn, err
	}
}

func (h monitorHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.observe(err)
		return err
	}
}

func (h monitorHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		h.observe(err)
		return err
	}
}

func (h monitorHook) observe(err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		h.mon.MarkUnavailable(health.Cache)
	} else {
		h.mon.MarkAvailable(health.Cache)
	}
}
