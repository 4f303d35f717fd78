package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Su57/stardew/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a client and pings it once so that a bad address
// fails at startup instead of on the first login.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// HealthProbe adapts a client to the PingContext shape used by health checks.
type HealthProbe struct {
	client *redis.Client
}

func NewHealthProbe(client *redis.Client) *HealthProbe {
	return &HealthProbe{client: client}
}

func (p *HealthProbe) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
