package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

const pingTimeout = 5 * time.Second

// OpenRedis returns a client that has answered a PING.
func OpenRedis(o Options) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("ping redis %s: %w", o.Addr, err)
	}
	return r, nil
}

// Pinger adapts the client to the health check signature.
func Pinger(r redis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error { return r.Ping(ctx).Err() }
}
