// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import "context"

type Repository interface {
	// ListFavoriteUserIDs returns every reader following the series.
	ListFavoriteUserIDs(context context.Context, webtoonID string) ([]string, error)

	InsertNotifications(context context.Context, notifications []*Notification) error
	ListNotifications(context context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error)
	CountUnread(context context.Context, userID string) (int64, error)
	MarkRead(context context.Context, userID, notificationID string) error
	MarkAllRead(context context.Context, userID string) error
}

// UnreadCache caches per-user unread counts.
type UnreadCache interface {
	Get(context context.Context, userID string) (count int64, ok bool, err error)
	Set(context context.Context, userID string, count int64) error
	Invalidate(context context.Context, userIDs ...string) error
}
