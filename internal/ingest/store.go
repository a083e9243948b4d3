// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import "context"

// Store is the persistence contract of the ingestion pipeline.
type Store interface {
	GetWebtoonTitle(context context.Context, webtoonID string) (string, error)

	// LockChapterSlot serializes concurrent publishes of (webtoonID, number).
	// The lock spans the caller's whole chapter item, page replacement
	// included, not just the row upsert. The release function must be called
	// exactly once when the item is done, success or not.
	LockChapterSlot(context context.Context, webtoonID string, number float64) (release func(), err error)

	// UpsertChapter creates or reuses the chapter row for (webtoonID, number).
	// On reuse the id and view count are preserved and the previous thumbnail
	// path is returned. Callers hold the slot lock around this.
	UpsertChapter(context context.Context, webtoonID string, number float64, requiredRoles []string) (chapterID string, previousThumbnail *string, err error)

	SetThumbnailPath(context context.Context, chapterID string, path *string) error

	// DeletePageRows removes every page record of the chapter.
	DeletePageRows(context context.Context, chapterID string) error

	// InsertPageRows bulk-inserts the chapter's new page records.
	InsertPageRows(context context.Context, rows []PageRow) error
}

// Notifier fans a new-chapter event out to interested readers. Failures are
// the caller's to log; fan-out is always best-effort.
type Notifier interface {
	NotifyNewChapter(context context.Context, webtoonID, webtoonTitle, chapterID string, number float64) error
}
