package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("secret")

	c, err := OpenRedis(Options{Addr: s.Addr(), Password: "secret", DB: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, 2, c.Options().DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Set(ctx, "k", "v", 0).Err())
	v, err := c.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	assert.NoError(t, Pinger(c)(ctx))
}

func TestOpenRedis_WrongPassword(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("secret")

	_, err := OpenRedis(Options{Addr: s.Addr(), Password: "nope"})
	assert.Error(t, err)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	_, err := OpenRedis(Options{Addr: "not-a-real-host:6379"})
	assert.Error(t, err)
}
