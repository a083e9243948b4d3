// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/toonhive/pkg/uuid"
)

type Service struct {
	repo   Repository
	cache  UnreadCache
	logger *slog.Logger
}

func NewService(repo Repository, cache UnreadCache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// NotifyNewChapter fans a published chapter out to every follower of the
// series. It satisfies the ingestion pipeline's notifier contract.
func (service *Service) NotifyNewChapter(context_ context.Context, webtoonID, webtoonTitle, chapterID string, number float64) error {
	userIDs, err := service.repo.ListFavoriteUserIDs(context_, webtoonID)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	message := fmt.Sprintf("Chapter %g of %s is out", number, webtoonTitle)

	notifications := make([]*Notification, len(userIDs))
	for index, userID := range userIDs {
		notifications[index] = &Notification{
			ID:        uuid.New(),
			UserID:    userID,
			WebtoonID: webtoonID,
			ChapterID: chapterID,
			Message:   message,
		}
	}

	if err := service.repo.InsertNotifications(context_, notifications); err != nil {
		return err
	}

	// Stale badge counts are worse than a cache miss.
	if err := service.cache.Invalidate(context_, userIDs...); err != nil {
		service.logger.Warn("unread_cache_invalidate_failed",
			slog.String("webtoon_id", webtoonID),
			slog.Int("users", len(userIDs)),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("chapter_notifications_sent",
		slog.String("webtoon_id", webtoonID),
		slog.String("chapter_id", chapterID),
		slog.Int("recipients", len(userIDs)),
	)
	return nil
}

func (service *Service) ListNotifications(context context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return service.repo.ListNotifications(context, userID, unreadOnly, limit, offset)
}

// UnreadCount serves the badge number, preferring the cache and falling back
// to a counted query that refills it.
func (service *Service) UnreadCount(context_ context.Context, userID string) (int64, error) {
	if count, ok, err := service.cache.Get(context_, userID); err == nil && ok {
		return count, nil
	} else if err != nil {
		service.logger.Warn("unread_cache_read_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	count, err := service.repo.CountUnread(context_, userID)
	if err != nil {
		return 0, err
	}

	if err := service.cache.Set(context_, userID, count); err != nil {
		service.logger.Warn("unread_cache_write_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return count, nil
}

func (service *Service) MarkRead(context_ context.Context, userID, notificationID string) error {
	if err := service.repo.MarkRead(context_, userID, notificationID); err != nil {
		return err
	}
	return service.invalidateQuietly(context_, userID)
}

func (service *Service) MarkAllRead(context_ context.Context, userID string) error {
	if err := service.repo.MarkAllRead(context_, userID); err != nil {
		return err
	}
	return service.invalidateQuietly(context_, userID)
}

func (service *Service) invalidateQuietly(context_ context.Context, userID string) error {
	if err := service.cache.Invalidate(context_, userID); err != nil {
		service.logger.Warn("unread_cache_invalidate_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
