// Package limiter throttles failed logins per identifier using fixed
// windows in Redis.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "login:fail:"

// LoginLimiter counts failed logins. Once maxAttempts failures happen inside
// one window, Check rejects the identifier until the window expires.
type LoginLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(redisClient *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		redis:       redisClient,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Check returns common.ErrRateLimited when identifier has used up its attempts.
func (l *LoginLimiter) Check(ctx context.Context, identifier string) error {
	count, err := l.redis.Get(ctx, loginKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("limiter get: %w", err)
	}

	if count >= int64(l.maxAttempts) {
		return common.ErrRateLimited
	}
	return nil
}

// RegisterFailure records one failed attempt. The window starts with the
// first failure; a counter left without a TTL gets one on the next failure.
func (l *LoginLimiter) RegisterFailure(ctx context.Context, identifier string) error {
	key := loginKey(identifier)

	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("limiter incr: %w", err)
	}

	return nil
}

// Reset forgets all failures of identifier.
func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, loginKey(identifier)).Err(); err != nil {
		return fmt.Errorf("limiter del: %w", err)
	}
	return nil
}

func loginKey(identifier string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(identifier))
}
