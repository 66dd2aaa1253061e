// Package resettokens keeps single-use password reset tokens in Redis.
package resettokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "reset:"

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: redisClient, ttl: ttl}
}

// Save binds token to userID until the store's TTL elapses.
func (s *Store) Save(ctx context.Context, token, userID string) error {
	if err := s.redis.Set(ctx, keyPrefix+token, userID, s.ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume returns the user id bound to token and deletes the token.
// Unknown or expired tokens yield common.ErrorNotFound.
func (s *Store) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.redis.GetDel(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}
