package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config locates the Redis instance holding drafts, caches, idempotency
// records and the job queue.
type Config struct {
	Addr     string
	Password string
	DB       int
	// PingTimeout bounds the startup check. Defaults to 3s.
	PingTimeout time.Duration
}

// New connects and verifies the server answers before any draft is stored.
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	const op = "redis.New"

	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		ContextTimeoutEnabled: true,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: ping %s:%w", op, cfg.Addr, err)
	}

	return client, nil
}
