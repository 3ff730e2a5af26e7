package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Redis is a Locker shared by every instance talking to the same Redis.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	prefix string
}

// NewRedis creates a Redis backed locker. Locks expire after ttl if the
// holder dies without releasing them.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: redislock.New(rdb),
		ttl:    ttl,
		prefix: "lock:",
	}
}

// Lock implements Locker.
func (r *Redis) Lock(ctx context.Context, key string) (Release, error) {
	l, err := r.client.Obtain(ctx, r.prefix+key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		if err := l.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, nil
}
