// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/constants"
	"github.com/taibuivan/toonhive/internal/platform/storage"
	"github.com/taibuivan/toonhive/pkg/batch"
	"github.com/taibuivan/toonhive/pkg/uuid"
)

// sideCleanupTimeout bounds the detached best-effort asset removals.
const sideCleanupTimeout = 30 * time.Second

type Orchestrator struct {
	store    Store
	blobs    storage.BlobStore
	notifier Notifier
	logger   *slog.Logger
}

func NewOrchestrator(store Store, blobs storage.BlobStore, notifier Notifier, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		blobs:    blobs,
		notifier: notifier,
		logger:   logger,
	}
}

/*
IngestBatch publishes a batch of chapters into one series.

The series title is resolved first; if that fails nothing runs and the whole
batch errors. After that, chapters are processed strictly in order and each
failure is recorded in that chapter's result while the batch moves on.

Parameters:
  - context: context.Context (callers budget the whole batch, uploads included)
  - webtoonID: string (UUID of the target series)
  - inputs: []ChapterInput
  - progress: ProgressFunc (nil for no observation)

Returns:
  - []ChapterResult: One entry per input, in input order
  - error: Only the up-front series lookup can fail the batch
*/
func (orchestrator *Orchestrator) IngestBatch(context_ context.Context, webtoonID string, inputs []ChapterInput, progress ProgressFunc) ([]ChapterResult, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	// The one batch-fatal step: the series must exist.
	title, err := orchestrator.store.GetWebtoonTitle(context_, webtoonID)
	if err != nil {
		return nil, err
	}

	orchestrator.logger.Info("ingest_batch_started",
		slog.String("webtoon_id", webtoonID),
		slog.Int("chapters", len(inputs)),
	)

	results := make([]ChapterResult, 0, len(inputs))
	for index, input := range inputs {
		overall := func(completed int) int {
			return completed * 100 / len(inputs)
		}

		report := func(state State, percent int) {
			progress(ProgressEvent{
				ChapterNumber:  input.Number,
				State:          state,
				Percent:        percent,
				OverallPercent: overall(index),
			})
		}

		result := orchestrator.ingestChapter(context_, webtoonID, title, input, report)
		results = append(results, result)

		progress(ProgressEvent{
			ChapterNumber:  input.Number,
			State:          stateOf(result),
			Percent:        finalPercentOf(result),
			OverallPercent: overall(index + 1),
		})
	}

	orchestrator.logger.Info("ingest_batch_finished",
		slog.String("webtoon_id", webtoonID),
		slog.Int("succeeded", countSuccesses(results)),
		slog.Int("failed", len(results)-countSuccesses(results)),
	)

	return results, nil
}

// ingestChapter runs one chapter item through the pipeline. Every failure
// path attempts to remove the objects this item uploaded so storage does not
// accumulate assets no row references.
func (orchestrator *Orchestrator) ingestChapter(context_ context.Context, webtoonID, webtoonTitle string, input ChapterInput, report func(State, int)) ChapterResult {
	result := ChapterResult{Number: input.Number}
	fail := func(err error) ChapterResult {
		result.Error = err.Error()
		orchestrator.logger.Error("ingest_chapter_failed",
			slog.String("webtoon_id", webtoonID),
			slog.Float64("chapter_number", input.Number),
			slog.String("error", err.Error()),
		)
		return result
	}

	report(StateProcessing, progressStart)

	// The slot lock covers the whole item, destructive page replacement
	// included; two publishers of the same number run strictly one at a time.
	release, err := orchestrator.store.LockChapterSlot(context_, webtoonID, input.Number)
	if err != nil {
		return fail(apperr.PersistFailure("chapter", err))
	}
	defer release()

	// 1. Upsert the chapter row and clear out any previous page set
	chapterID, previousThumbnail, err := orchestrator.store.UpsertChapter(context_, webtoonID, input.Number, input.RequiredRoles)
	if err != nil {
		return fail(apperr.PersistFailure("chapter", err))
	}
	result.ChapterID = chapterID

	if err := orchestrator.store.DeletePageRows(context_, chapterID); err != nil {
		return fail(apperr.PersistFailure("pages", err))
	}
	if err := orchestrator.blobs.RemoveFolder(context_, storage.ChapterPagesFolder(webtoonID, chapterID)); err != nil {
		return fail(apperr.UploadFailure("previous pages", err))
	}
	report(StateProcessing, progressUpserted)

	// 2. Thumbnail
	if err := orchestrator.applyThumbnail(context_, webtoonID, chapterID, previousThumbnail, input); err != nil {
		return fail(err)
	}
	report(StateProcessing, progressThumbnail)

	// 3. Page uploads, numbers fixed by input order before anything moves
	rows, uploadedKeys, err := orchestrator.uploadPages(context_, webtoonID, chapterID, input.Pages, report)
	if err != nil {
		orchestrator.compensate(webtoonID, chapterID, uploadedKeys)
		return fail(err)
	}

	// 4. Bulk insert the new page records
	if err := orchestrator.store.InsertPageRows(context_, rows); err != nil {
		orchestrator.compensate(webtoonID, chapterID, uploadedKeys)
		return fail(apperr.PersistFailure("pages", err))
	}
	report(StateProcessing, progressPagesDone)

	// 5. Fan-out, best-effort
	if err := orchestrator.notifier.NotifyNewChapter(context_, webtoonID, webtoonTitle, chapterID, input.Number); err != nil {
		orchestrator.logger.Warn("ingest_notify_failed",
			slog.String("chapter_id", chapterID),
			slog.String("error", err.Error()),
		)
	}

	orchestrator.logger.Info("ingest_chapter_succeeded",
		slog.String("webtoon_id", webtoonID),
		slog.String("chapter_id", chapterID),
		slog.Float64("chapter_number", input.Number),
		slog.Int("pages", len(rows)),
	)

	result.Success = true
	return result
}

// applyThumbnail uploads a new thumbnail, removes the previous one when it is
// replaced or explicitly dropped, and leaves it untouched otherwise.
func (orchestrator *Orchestrator) applyThumbnail(context_ context.Context, webtoonID, chapterID string, previous *string, input ChapterInput) error {
	switch {
	case input.Thumbnail != nil:
		key := storage.ThumbnailKey(webtoonID, chapterID, input.Thumbnail.Filename)

		reader, err := input.Thumbnail.Open()
		if err != nil {
			return apperr.UploadFailure("thumbnail", err)
		}
		defer reader.Close()

		storedKey, err := orchestrator.blobs.Upload(context_, key, reader, input.Thumbnail.Size, input.Thumbnail.ContentType)
		if err != nil {
			return apperr.UploadFailure("thumbnail", err)
		}
		if err := orchestrator.store.SetThumbnailPath(context_, chapterID, &storedKey); err != nil {
			return apperr.PersistFailure("thumbnail", err)
		}
		if previous != nil && *previous != storedKey {
			orchestrator.removeQuietly(chapterID, *previous)
		}

	case input.RemoveThumbnail && previous != nil:
		if err := orchestrator.store.SetThumbnailPath(context_, chapterID, nil); err != nil {
			return apperr.PersistFailure("thumbnail", err)
		}
		orchestrator.removeQuietly(chapterID, *previous)
	}

	return nil
}

// uploadPages writes every page object in concurrent windows. Page numbers
// and object keys derive from the input position, never from completion
// order, so a slow upload cannot shuffle the reading sequence.
func (orchestrator *Orchestrator) uploadPages(context_ context.Context, webtoonID, chapterID string, pages []PageFile, report func(State, int)) ([]PageRow, []string, error) {
	rows := make([]PageRow, len(pages))
	keys := make([]string, len(pages))
	for index, page := range pages {
		number := index + 1
		keys[index] = storage.PageKey(webtoonID, chapterID, number, page.Filename)
		rows[index] = PageRow{
			ID:        uuid.New(),
			ChapterID: chapterID,
			Number:    number,
			AssetPath: keys[index],
		}
	}

	var completed atomic.Int64
	var uploadedMu sync.Mutex
	var uploaded []string

	errs := batch.Run(context_, pages, constants.MaxConcurrentPageUploads, func(runContext context.Context, index int, page PageFile) error {
		reader, err := page.Open()
		if err != nil {
			return err
		}
		defer reader.Close()

		if _, err := orchestrator.blobs.Upload(runContext, keys[index], reader, page.Size, page.ContentType); err != nil {
			return err
		}

		uploadedMu.Lock()
		uploaded = append(uploaded, keys[index])
		uploadedMu.Unlock()

		done := int(completed.Add(1))
		report(StateProcessing, progressThumbnail+pagesProgressSpan*done/len(pages))
		return nil
	})

	for index, err := range errs {
		if err != nil {
			return nil, uploaded, apperr.UploadFailure(fmt.Sprintf("page %d (%s)", index+1, pages[index].Filename), err)
		}
	}

	return rows, uploaded, nil
}

// compensate removes the objects a failed item uploaded. Best-effort: the
// item is already failed either way.
func (orchestrator *Orchestrator) compensate(webtoonID, chapterID string, uploadedKeys []string) {
	if len(uploadedKeys) == 0 {
		return
	}

	detached, cancel := context.WithTimeout(context.Background(), sideCleanupTimeout)
	defer cancel()

	if err := orchestrator.blobs.Remove(detached, uploadedKeys...); err != nil {
		orchestrator.logger.Warn("ingest_compensation_failed",
			slog.String("webtoon_id", webtoonID),
			slog.String("chapter_id", chapterID),
			slog.Int("keys", len(uploadedKeys)),
			slog.String("error", err.Error()),
		)
	}
}

func (orchestrator *Orchestrator) removeQuietly(chapterID, key string) {
	detached, cancel := context.WithTimeout(context.Background(), sideCleanupTimeout)
	defer cancel()

	if err := orchestrator.blobs.Remove(detached, key); err != nil {
		orchestrator.logger.Warn("ingest_asset_remove_failed",
			slog.String("chapter_id", chapterID),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func stateOf(result ChapterResult) State {
	if result.Success {
		return StateSuccess
	}
	return StateError
}

func finalPercentOf(result ChapterResult) int {
	if result.Success {
		return progressComplete
	}
	return progressStart
}

func countSuccesses(results []ChapterResult) int {
	count := 0
	for _, result := range results {
		if result.Success {
			count++
		}
	}
	return count
}
