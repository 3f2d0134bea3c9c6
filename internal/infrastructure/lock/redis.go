// Package lock provides the distributed lock guarding the monthly recurrence job.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/rezkam/fiscal/internal/application/scheduling"
	"github.com/rezkam/fiscal/internal/domain"
)

// DefaultTTL bounds how long a crashed job can keep the lock.
const DefaultTTL = 10 * time.Minute

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisLocker obtains locks with redislock.
type RedisLocker struct {
	rdb    *redis.Client
	client *redislock.Client
	ttl    time.Duration
}

var _ scheduling.Locker = (*RedisLocker)(nil)

// NewRedisLocker connects to Redis and verifies the connection.
func NewRedisLocker(ctx context.Context, cfg RedisConfig) (*RedisLocker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLockerWithClient(rdb, cfg.TTL), nil
}

// NewRedisLockerWithClient creates a locker on an existing client.
// A non-positive ttl uses DefaultTTL.
func NewRedisLockerWithClient(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{
		rdb:    rdb,
		client: redislock.New(rdb),
		ttl:    ttl,
	}
}

// Obtain acquires key without retrying. A held key yields domain.ErrJobLocked.
func (l *RedisLocker) Obtain(ctx context.Context, key string) (scheduling.Lock, error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJobLocked, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return &redisLock{lock: lock}, nil
}

// Close closes the Redis client.
func (l *RedisLocker) Close() error {
	return l.rdb.Close()
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the lock. A lock that already expired is not an error.
func (r *redisLock) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
