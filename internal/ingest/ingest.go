// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ingest implements batched chapter publishing: uploading page images,
writing chapter and page rows, and fanning out notifications, for one or
many chapters in a single request.

# Execution Model

Chapters in a batch run strictly one after another. Within a chapter, page
uploads run in bounded concurrent windows. Each chapter item moves through
its own state machine (pending, processing with a percentage, then success
or error); one chapter failing never aborts its siblings. The only thing
that aborts a whole batch is failing to resolve the target series up front.

# Upsert Semantics

Ingesting a chapter number that already exists replaces it completely: the
chapter row is reused (identity and view counts preserved), but every
existing page row and stored page object is removed before the new pages go
in. Concurrent ingestion of the same (series, number) pair is serialized
with a Postgres advisory lock.
*/
package ingest

import (
	"io"
)

// State is one phase of a chapter item's lifecycle.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Progress milestones within one chapter item.
const (
	progressStart      = 0
	progressUpserted   = 10
	progressThumbnail  = 20
	progressPagesDone  = 90
	progressComplete   = 100
	pagesProgressSpan  = progressPagesDone - progressThumbnail
)

// PageFile is one incoming image. Open must be callable at upload time;
// multipart file headers and archive entries both satisfy this shape.
type PageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// ChapterInput describes one chapter to ingest.
type ChapterInput struct {
	Number          float64
	RequiredRoles   []string
	Thumbnail       *PageFile
	RemoveThumbnail bool
	Pages           []PageFile
}

// ChapterResult reports the outcome of one chapter item.
type ChapterResult struct {
	Number    float64 `json:"number"`
	ChapterID string  `json:"chapter_id,omitempty"`
	Success   bool    `json:"success"`
	Error     string  `json:"error,omitempty"`
}

// ProgressEvent is one observation of a chapter item's state machine.
type ProgressEvent struct {
	ChapterNumber  float64
	State          State
	Percent        int
	OverallPercent int
}

// ProgressFunc observes ingestion progress. Implementations must be fast
// and safe for concurrent calls; page-upload events arrive from the upload
// goroutines.
type ProgressFunc func(event ProgressEvent)

// PageRow is one page record destined for the database.
type PageRow struct {
	ID        string
	ChapterID string
	Number    int
	AssetPath string
}
