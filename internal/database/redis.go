package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/makebyjordan/chatbot-crm/internal/env"
)

// NewRedisClient connects to REDIS_URL (host:port). It returns nil, nil when
// redis is not configured so callers can run without it.
func NewRedisClient(ctx context.Context) (*redis.Client, error) {
	addr := strings.TrimSpace(env.Get(env.RedisURL))
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: env.Get(env.RedisPass),
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}
