// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

type Repository interface {
	ListChapters(context context.Context, webtoonID string, limit, offset int) ([]*Chapter, int, error)
	GetChapter(context context.Context, id string) (*Chapter, error)
	GetWebtoonSummary(context context.Context, webtoonID string) (*WebtoonSummary, error)
	ListPages(context context.Context, chapterID string) ([]*Page, error)

	// ListNeighbors returns candidates strictly after (ascending) or before
	// (descending) the given number within the series, nearest first.
	ListNeighbors(context context.Context, webtoonID string, number float64, ascending bool, limit, offset int) ([]*NavCandidate, error)

	ListLatest(context context.Context, limit int) ([]*LatestEntry, error)
	ListRandom(context context.Context, limit int) ([]*LatestEntry, error)

	UpdateChapter(context context.Context, ch *Chapter) error
	DeleteChapter(context context.Context, id string) error

	// IncrementViewCounts bumps the chapter counter and its parent series
	// counter in one statement.
	IncrementViewCounts(context context.Context, chapterID string) error

	// MarkRead upserts a read mark; marking an already-read chapter is a no-op.
	MarkRead(context context.Context, userID, chapterID string) error
}
