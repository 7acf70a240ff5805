// Package locking provides the Redis-backed grouping-key lock used to
// serialize balance replays across engine instances.
package locking

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"kardex/internal/core/apperror"
	"kardex/internal/domain/ledger"
	"kardex/pkg/logger"
)

// Options configure lock acquisition.
type Options struct {
	// TTL bounds how long a crashed holder can block other writers.
	TTL time.Duration
	// RetryInterval and RetryLimit shape the obtain retry loop. Contention
	// on a grouping key is normally short (one replay), so a modest linear
	// backoff is enough.
	RetryInterval time.Duration
	RetryLimit    int
}

// DefaultOptions match the expected duration of one full-history replay
// plus snapshot upserts.
func DefaultOptions() Options {
	return Options{
		TTL:           30 * time.Second,
		RetryInterval: 100 * time.Millisecond,
		RetryLimit:    50,
	}
}

// RedisLocker implements ledger.KeyLocker on top of bsm/redislock.
type RedisLocker struct {
	client *redislock.Client
	opts   Options
}

// NewRedisLocker creates a locker backed by the given Redis client.
func NewRedisLocker(rdb *redis.Client, opts Options) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		opts:   opts,
	}
}

// Lock acquires the named lock. The returned release function is safe to
// call after the lock TTL expired.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	retry := redislock.LimitRetry(
		redislock.LinearBackoff(l.opts.RetryInterval),
		l.opts.RetryLimit,
	)

	lock, err := l.client.Obtain(ctx, key, l.opts.TTL, &redislock.Options{
		RetryStrategy: retry,
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, apperror.NewLocked(key)
	}
	if err != nil {
		return nil, apperror.NewPersistence("obtain lock", err)
	}

	release := func() {
		if err := lock.Release(context.Background()); err != nil &&
			!errors.Is(err, redislock.ErrLockNotHeld) {
			logger.Warn(ctx, "failed to release key lock", "key", key, "error", err)
		}
	}
	return release, nil
}

var _ ledger.KeyLocker = (*RedisLocker)(nil)
