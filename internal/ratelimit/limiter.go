// Package ratelimit enforces per-key request budgets using Redis
// counters. Limits are fixed-window: the first hit in a window sets the
// TTL and the counter expires with it, so the first call after the
// window elapses restarts the count at 1.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRedisUnavailable = errors.New("rate limiter storage unavailable")

// Limiter tracks attempt counts per key within a rolling window.
// Keys are independent: login, signup and verification budgets never
// cross-contaminate.
type Limiter struct {
	redis redis.UniversalClient
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient) *Limiter {
	return &Limiter{redis: redisClient}
}

// Allow increments the counter for key and reports whether the caller
// is still within maxAttempts for the current window.
func (l *Limiter) Allow(ctx context.Context, key string, maxAttempts int, window time.Duration) (bool, error) {
	count, err := l.redis.Incr(ctx, counterKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, counterKey(key), window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count <= int64(maxAttempts), nil
}

// Attempts returns the current counter for a key. Missing keys return
// zero and do not reveal whether the key was ever used.
func (l *Limiter) Attempts(ctx context.Context, key string) (int, error) {
	count, err := l.redis.Get(ctx, counterKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(count), nil
}

// Reset clears the counter for a key.
func (l *Limiter) Reset(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = counterKey(k)
	}
	if err := l.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func counterKey(key string) string {
	return "ratelimit:" + key
}

// Key builders for the budgets the auth flows use.

func LoginKey(ip string) string {
	return "login_" + ip
}

func SignupKey(ip string) string {
	return "signup_" + ip
}

func VerifyKey(userID uint) string {
	return fmt.Sprintf("verify_%d", userID)
}

func FailedLoginKey(username string) string {
	return "failed_login_" + username
}
