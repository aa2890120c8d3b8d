package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoOpAlwaysMisses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NoOp{}

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	assert.NoError(t, c.Del(ctx, "k", "other"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}
