// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/constants"
)

// RedisSessionStore implements [SessionStore] using Redis.
//
// Each refresh token is a key under constants.RedisPrefixRefreshToken whose
// value is the owning userID. Expiry is delegated to the key's TTL, so no
// sweeper process is needed.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a new Redis-backed SessionStore.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

/*
Set stores a refresh token with its associated userID and TTL.

Parameters:
  - context: context.Context
  - token: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (store *RedisSessionStore) Set(context context.Context, token, userID string, ttl time.Duration) error {
	key := constants.RedisPrefixRefreshToken + token

	if err := store.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_refresh_token_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the userID for a given refresh token.

Description: Returns apperr.NotFound if the token is absent or expired.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: Owning UserID
  - error: apperr.NotFound or connectivity errors
*/
func (store *RedisSessionStore) Get(context context.Context, token string) (string, error) {
	key := constants.RedisPrefixRefreshToken + token

	userID, err := store.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Refresh token is invalid or expired")
		}
		return "", fmt.Errorf("redis_refresh_token_get_failed: %w", err)
	}

	return userID, nil
}

/*
Delete removes the refresh token from Redis, revoking the session.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (store *RedisSessionStore) Delete(context context.Context, token string) error {
	key := constants.RedisPrefixRefreshToken + token

	if err := store.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_refresh_token_delete_failed: %w", err)
	}

	return nil
}
