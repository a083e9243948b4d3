// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	favorites map[string][]string // webtoonID -> userIDs
	inserted  []*Notification
	unread    map[string]int64
	countHits int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		favorites: map[string][]string{},
		unread:    map[string]int64{},
	}
}

func (fake *fakeRepository) ListFavoriteUserIDs(_ context.Context, webtoonID string) ([]string, error) {
	return fake.favorites[webtoonID], nil
}

func (fake *fakeRepository) InsertNotifications(_ context.Context, notifications []*Notification) error {
	fake.inserted = append(fake.inserted, notifications...)
	return nil
}

func (fake *fakeRepository) ListNotifications(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return nil, 0, nil
}

func (fake *fakeRepository) CountUnread(_ context.Context, userID string) (int64, error) {
	fake.countHits++
	return fake.unread[userID], nil
}

func (fake *fakeRepository) MarkRead(_ context.Context, userID, notificationID string) error {
	return nil
}

func (fake *fakeRepository) MarkAllRead(_ context.Context, userID string) error { return nil }

type fakeCache struct {
	values      map[string]int64
	invalidated []string
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]int64{}}
}

func (fake *fakeCache) Get(_ context.Context, userID string) (int64, bool, error) {
	if fake.getErr != nil {
		return 0, false, fake.getErr
	}
	count, ok := fake.values[userID]
	return count, ok, nil
}

func (fake *fakeCache) Set(_ context.Context, userID string, count int64) error {
	fake.values[userID] = count
	return nil
}

func (fake *fakeCache) Invalidate(_ context.Context, userIDs ...string) error {
	for _, userID := range userIDs {
		delete(fake.values, userID)
		fake.invalidated = append(fake.invalidated, userID)
	}
	return nil
}

func newTestService(repo Repository, cache UnreadCache) *Service {
	return NewService(repo, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNotifyNewChapter_FansOutToFollowers(t *testing.T) {
	repo := newFakeRepository()
	repo.favorites["w-1"] = []string{"u-1", "u-2", "u-3"}
	cache := newFakeCache()
	cache.values["u-1"] = 4

	service := newTestService(repo, cache)

	err := service.NotifyNewChapter(context.Background(), "w-1", "Tower of Dawn", "c-9", 12.5)
	require.NoError(t, err)

	require.Len(t, repo.inserted, 3)
	first := repo.inserted[0]
	assert.Equal(t, "u-1", first.UserID)
	assert.Equal(t, "c-9", first.ChapterID)
	assert.Equal(t, "Chapter 12.5 of Tower of Dawn is out", first.Message)
	assert.NotEmpty(t, first.ID)

	assert.ElementsMatch(t, []string{"u-1", "u-2", "u-3"}, cache.invalidated)
	assert.NotContains(t, cache.values, "u-1", "cached badge count must be dropped")
}

func TestNotifyNewChapter_NoFollowersNoWrites(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, newFakeCache())

	err := service.NotifyNewChapter(context.Background(), "w-1", "Tower of Dawn", "c-1", 1)
	require.NoError(t, err)
	assert.Empty(t, repo.inserted)
}

func TestUnreadCount_CacheHitSkipsDatabase(t *testing.T) {
	repo := newFakeRepository()
	cache := newFakeCache()
	cache.values["u-1"] = 7

	service := newTestService(repo, cache)

	count, err := service.UnreadCount(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.Zero(t, repo.countHits)
}

func TestUnreadCount_MissRefillsCache(t *testing.T) {
	repo := newFakeRepository()
	repo.unread["u-1"] = 3
	cache := newFakeCache()

	service := newTestService(repo, cache)

	count, err := service.UnreadCount(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, 1, repo.countHits)
	assert.Equal(t, int64(3), cache.values["u-1"])
}

func TestUnreadCount_CacheErrorFallsBack(t *testing.T) {
	repo := newFakeRepository()
	repo.unread["u-1"] = 2
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")

	service := newTestService(repo, cache)

	count, err := service.UnreadCount(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMarkRead_InvalidatesBadge(t *testing.T) {
	repo := newFakeRepository()
	cache := newFakeCache()
	cache.values["u-1"] = 5

	service := newTestService(repo, cache)

	require.NoError(t, service.MarkRead(context.Background(), "u-1", "n-1"))
	assert.Contains(t, cache.invalidated, "u-1")
}
