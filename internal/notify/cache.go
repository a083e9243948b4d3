// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/toonhive/internal/platform/constants"
)

// unreadCountTTL caps staleness if an invalidation is ever missed.
const unreadCountTTL = 10 * time.Minute

// RedisUnreadCache stores per-user unread counts under
// "notify:unread_count:{userID}".
type RedisUnreadCache struct {
	client *redis.Client
}

func NewRedisUnreadCache(client *redis.Client) *RedisUnreadCache {
	return &RedisUnreadCache{client: client}
}

func (cache *RedisUnreadCache) key(userID string) string {
	return constants.RedisPrefixUnreadCount + userID
}

func (cache *RedisUnreadCache) Get(context context.Context, userID string) (int64, bool, error) {
	count, err := cache.client.Get(context, cache.key(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (cache *RedisUnreadCache) Set(context context.Context, userID string, count int64) error {
	return cache.client.Set(context, cache.key(userID), count, unreadCountTTL).Err()
}

func (cache *RedisUnreadCache) Invalidate(context context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, len(userIDs))
	for index, userID := range userIDs {
		keys[index] = cache.key(userID)
	}
	return cache.client.Del(context, keys...).Err()
}
