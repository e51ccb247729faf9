package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"strappon/internal/utils"
)

// ConnectRedis opens the notification counter store. It returns nil, nil
// when no URL is configured so callers can run without Redis.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	utils.LogEvent("", "redis", "connect", "connected to "+opts.Addr)
	return client, nil
}
