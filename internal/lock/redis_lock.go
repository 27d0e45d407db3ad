// Package lock provides a Redis backed mutual exclusion lock shared between
// ledger processes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	ErrNotAcquired = errors.New("lock held by another owner")
	ErrNotHeld     = errors.New("lock not held")
)

// releaseScript deletes the key only while it still carries our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

type RedisLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// New creates a lock for key with a random owner token
func New(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	return NewWithToken(client, key, uuid.NewString(), ttl)
}

func NewWithToken(client *redis.Client, key, token string, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, key: key, token: token, ttl: ttl}
}

// AccrualKey is the lock guarding the interest sweep for one calendar date
func AccrualKey(date time.Time) string {
	return fmt.Sprintf("interest:accrual:%s", date.UTC().Format(time.DateOnly))
}

func (l *RedisLock) Key() string { return l.key }

// TryAcquire sets the key if absent. The TTL releases the lock if the owner dies.
func (l *RedisLock) TryAcquire(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return ErrNotAcquired
	}
	return nil
}

// Acquire retries TryAcquire every interval until it succeeds, ctx is done,
// or maxRetries attempts have failed.
func (l *RedisLock) Acquire(ctx context.Context, interval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := l.TryAcquire(ctx)
		if !errors.Is(err, ErrNotAcquired) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return ErrNotAcquired
}

func (l *RedisLock) Release(ctx context.Context) error {
	n, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}
