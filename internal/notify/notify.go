// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify delivers new-chapter notifications to readers who follow a
series.

Fan-out happens at publish time: one notification row per follower, written
in bulk. The per-user unread count is cached in Redis and invalidated on
every write, so the badge endpoint stays a cache hit on the hot path.
Everything here is best-effort from the publisher's point of view; a failed
fan-out is logged, never surfaced to the ingestion caller as a hard error.
*/
package notify

import "time"

// Notification is one message in a reader's inbox.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	WebtoonID string    `json:"webtoon_id"`
	ChapterID string    `json:"chapter_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
