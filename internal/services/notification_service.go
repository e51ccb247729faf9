package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"strappon/internal/utils"
)

// CounterStore keeps per user unread notification counters.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// RedisCounters stores counters as plain Redis integers.
type RedisCounters struct {
	Client *redis.Client
}

func (r RedisCounters) Incr(ctx context.Context, key string) (int64, error) {
	return r.Client.Incr(ctx, key).Result()
}

func (r RedisCounters) Get(ctx context.Context, key string) (int64, error) {
	n, err := r.Client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (r RedisCounters) Reset(ctx context.Context, key string) error {
	return r.Client.Set(ctx, key, 0, 0).Err()
}

func notificationKey(userID string) string {
	return "notifications." + userID
}

// NotificationService bumps the counters clients poll to know something
// changed for them. Without a store every call is a no-op.
type NotificationService struct {
	Store     CounterStore
	RequestID string
}

func (s NotificationService) Bump(ctx context.Context, userIDs ...string) {
	if s.Store == nil {
		return
	}
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, err := s.Store.Incr(ctx, notificationKey(id)); err != nil {
			utils.LogError(s.RequestID, "notification", "bump", fmt.Errorf("user_id=%s: %w", id, err))
		}
	}
}

func (s NotificationService) Count(ctx context.Context, userID string) (int64, error) {
	if s.Store == nil {
		return 0, nil
	}
	return s.Store.Get(ctx, notificationKey(userID))
}

func (s NotificationService) Reset(ctx context.Context, userID string) error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.Reset(ctx, notificationKey(userID)); err != nil {
		return fmt.Errorf("reset notifications: %w", err)
	}
	return nil
}
