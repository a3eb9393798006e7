package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock held by another process")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a single-holder lease stored in a Redis key (SET NX PX).
type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewLock creates a lock on key with the given lease time.
func NewLock(client *redis.Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Lock{client: client, key: key, ttl: ttl}
}

// Acquire takes the lock or returns ErrLockHeld. The returned func releases it.
func (l *Lock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("setnx %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("release %s: %w", l.key, err)
		}
		return nil
	}, nil
}
