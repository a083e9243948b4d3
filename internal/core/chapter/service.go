// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/toonhive/internal/core/access"
	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/constants"
	"github.com/taibuivan/toonhive/internal/platform/storage"
	"github.com/taibuivan/toonhive/internal/platform/validate"
)

// sideEffectTimeout bounds the detached view-count and read-mark writes.
const sideEffectTimeout = 5 * time.Second

// errNoAccessibleChapter is returned when a random draw finds nothing the
// viewer may read.
var errNoAccessibleChapter = apperr.NotFound("Accessible chapter")

type Service struct {
	repo   Repository
	blobs  storage.BlobStore
	logger *slog.Logger
}

func NewService(repo Repository, blobs storage.BlobStore, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		blobs:  blobs,
		logger: logger,
	}
}

// # Reader View

/*
ResolveReaderView assembles everything a reading client needs for one chapter.

Behaviour:
 1. Fetches the chapter and its series summary; absent rows surface NotFound.
 2. Evaluates the viewer against the chapter's required roles.
 3. On denial, returns a restricted view: metadata and role requirements
    only, no page records, AccessDenied set. Denial is not an error.
 4. On success, resolves every page asset to a public URL in reading order,
    then records the view count bump and (for signed-in viewers) the
    read mark in a detached goroutine. Those writes never fail the request.
 5. Resolves previous and next links concurrently, each scanning outward in
    windows of candidates and skipping chapters this viewer cannot read.

Parameters:
  - context: context.Context
  - viewer: access.Viewer (zero value for anonymous)
  - chapterID: string (UUID)

Returns:
  - *ReaderView: The assembled view
  - error: NotFound or storage/query failures
*/
func (service *Service) ResolveReaderView(context_ context.Context, viewer access.Viewer, chapterID string) (*ReaderView, error) {
	// 1. Chapter and series metadata
	ch, err := service.repo.GetChapter(context_, chapterID)
	if err != nil {
		return nil, err
	}

	summary, err := service.repo.GetWebtoonSummary(context_, ch.WebtoonID)
	if err != nil {
		return nil, err
	}

	service.resolveThumbnailURL(ch)

	accessible := access.CanView(viewer, ch.RequiredRoles)

	view := &ReaderView{
		Chapter:       ch,
		Webtoon:       summary,
		AccessDenied:  !accessible,
		RequiredRoles: ch.RequiredRoles,
	}

	// 2. Page content, withheld entirely for restricted viewers
	if accessible {
		pages, err := service.repo.ListPages(context_, ch.ID)
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			page.URL = service.blobs.PublicURL(page.AssetPath)
		}
		view.Pages = pages

		service.recordReadSideEffects(viewer, ch)
	}

	// 3. Navigation, both directions in parallel
	group, groupContext := errgroup.WithContext(context_)
	group.Go(func() error {
		previous, err := service.findNeighbor(groupContext, viewer, ch.WebtoonID, ch.Number, false)
		view.Previous = previous
		return err
	})
	group.Go(func() error {
		next, err := service.findNeighbor(groupContext, viewer, ch.WebtoonID, ch.Number, true)
		view.Next = next
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return view, nil
}

// findNeighbor locates the nearest chapter in the given direction the viewer
// can read. It pulls candidates in fixed-size windows so a long run of
// restricted chapters costs extra queries, not an unbounded scan.
func (service *Service) findNeighbor(context_ context.Context, viewer access.Viewer, webtoonID string, number float64, ascending bool) (*NavigationRef, error) {
	for offset := 0; ; offset += constants.NavigationScanWindow {
		candidates, err := service.repo.ListNeighbors(context_, webtoonID, number, ascending, constants.NavigationScanWindow, offset)
		if err != nil {
			return nil, err
		}

		for _, candidate := range candidates {
			if access.CanView(viewer, candidate.RequiredRoles) {
				return &NavigationRef{ID: candidate.ID, Number: candidate.Number}, nil
			}
		}

		// A short window means the series is exhausted in this direction.
		if len(candidates) < constants.NavigationScanWindow {
			return nil, nil
		}
	}
}

// recordReadSideEffects detaches the view-count bump and read mark from the
// request. Failures are logged and swallowed; a reader never waits on them.
func (service *Service) recordReadSideEffects(viewer access.Viewer, ch *Chapter) {
	go func() {
		detached, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := service.repo.IncrementViewCounts(detached, ch.ID); err != nil {
			service.logger.Warn("view_count_increment_failed",
				slog.String("chapter_id", ch.ID),
				slog.String("error", err.Error()),
			)
		}

		if viewer.Anonymous() {
			return
		}

		if err := service.repo.MarkRead(detached, viewer.UserID, ch.ID); err != nil {
			service.logger.Warn("mark_read_failed",
				slog.String("chapter_id", ch.ID),
				slog.String("user_id", viewer.UserID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// # Listings

func (service *Service) ListChapters(context context.Context, webtoonID string, limit, offset int) ([]*Chapter, int, error) {
	chapters, total, err := service.repo.ListChapters(context, webtoonID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, ch := range chapters {
		service.resolveThumbnailURL(ch)
	}
	return chapters, total, nil
}

// ListLatest returns the newest releases across all series, each annotated
// with whether this viewer may read it. Restricted entries stay listed so
// clients can advertise gated content.
func (service *Service) ListLatest(context context.Context, viewer access.Viewer, limit int) ([]*LatestEntry, error) {
	entries, err := service.repo.ListLatest(context, limit)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		entry.Accessible = access.CanView(viewer, entry.Chapter.RequiredRoles)
		service.resolveThumbnailURL(entry.Chapter)
	}
	return entries, nil
}

// RandomChapter picks a random chapter the viewer can read, sampling a
// window of candidates and returning the first accessible one.
func (service *Service) RandomChapter(context context.Context, viewer access.Viewer) (*LatestEntry, error) {
	entries, err := service.repo.ListRandom(context, constants.NavigationScanWindow)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if access.CanView(viewer, entry.Chapter.RequiredRoles) {
			entry.Accessible = true
			service.resolveThumbnailURL(entry.Chapter)
			return entry, nil
		}
	}

	return nil, errNoAccessibleChapter
}

// # Management

func (service *Service) UpdateChapter(context context.Context, id string, ch *Chapter) error {
	ch.ID = id

	validator := &validate.Validator{}
	validator.Custom(FieldNumber, ch.Number <= 0, "must be greater than zero")
	for _, role := range ch.RequiredRoles {
		validator.Required(FieldRequiredRoles, role)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateChapter(context, ch); err != nil {
		return err
	}

	service.logger.Info("chapter_updated", slog.String("chapter_id", id))
	return nil
}

// DeleteChapter removes the chapter, its page rows, and then every stored
// asset under the chapter's folder.
func (service *Service) DeleteChapter(context context.Context, id string) error {
	ch, err := service.repo.GetChapter(context, id)
	if err != nil {
		return err
	}

	if err := service.repo.DeleteChapter(context, id); err != nil {
		return err
	}

	folder := storage.ChapterFolder(ch.WebtoonID, ch.ID)
	if err := service.blobs.RemoveFolder(context, folder); err != nil {
		service.logger.Error("chapter_asset_cleanup_failed",
			slog.String("chapter_id", id),
			slog.String("folder", folder),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Warn("chapter_deleted",
		slog.String("chapter_id", id),
		slog.String("webtoon_id", ch.WebtoonID),
	)
	return nil
}

func (service *Service) resolveThumbnailURL(ch *Chapter) {
	if ch.ThumbnailPath != nil {
		ch.ThumbnailURL = service.blobs.PublicURL(*ch.ThumbnailPath)
	}
}
