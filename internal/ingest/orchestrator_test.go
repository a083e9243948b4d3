// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/toonhive/internal/platform/dberr"
	"github.com/taibuivan/toonhive/internal/platform/storage"
)

// # Fakes

type fakeStore struct {
	mu sync.Mutex

	title    string
	titleErr error

	upsertCount       int
	previousThumbnail *string
	thumbnailPaths    map[string]*string
	clearedChapters   []string
	insertedRows      [][]PageRow
	insertErr         error
	lockErr           error

	// events records store calls in order, lock and release included.
	events []string
}

func (fake *fakeStore) record(event string) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.events = append(fake.events, event)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		title:          "Tower of Dawn",
		thumbnailPaths: map[string]*string{},
	}
}

func (fake *fakeStore) GetWebtoonTitle(_ context.Context, webtoonID string) (string, error) {
	if fake.titleErr != nil {
		return "", fake.titleErr
	}
	return fake.title, nil
}

func (fake *fakeStore) LockChapterSlot(_ context.Context, webtoonID string, number float64) (func(), error) {
	if fake.lockErr != nil {
		return nil, fake.lockErr
	}
	fake.record(fmt.Sprintf("lock %g", number))
	return func() {
		fake.record(fmt.Sprintf("unlock %g", number))
	}, nil
}

func (fake *fakeStore) UpsertChapter(_ context.Context, webtoonID string, number float64, requiredRoles []string) (string, *string, error) {
	fake.record(fmt.Sprintf("upsert %g", number))
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.upsertCount++
	return fmt.Sprintf("ch-%g", number), fake.previousThumbnail, nil
}

func (fake *fakeStore) SetThumbnailPath(_ context.Context, chapterID string, path *string) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.thumbnailPaths[chapterID] = path
	return nil
}

func (fake *fakeStore) DeletePageRows(_ context.Context, chapterID string) error {
	fake.record("delete_pages " + chapterID)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.clearedChapters = append(fake.clearedChapters, chapterID)
	return nil
}

func (fake *fakeStore) InsertPageRows(_ context.Context, rows []PageRow) error {
	if fake.insertErr != nil {
		return fake.insertErr
	}
	fake.record("insert_pages " + rows[0].ChapterID)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.insertedRows = append(fake.insertedRows, rows)
	return nil
}

type fakeBlobStore struct {
	mu sync.Mutex

	uploads        []string
	removed        []string
	removedFolders []string

	failKeys map[string]bool
	delays   map[string]time.Duration
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		failKeys: map[string]bool{},
		delays:   map[string]time.Duration{},
	}
}

func (fake *fakeBlobStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	if delay, ok := fake.delayFor(key); ok {
		time.Sleep(delay)
	}
	if fake.shouldFail(key) {
		return "", errors.New("storage write refused")
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.uploads = append(fake.uploads, key)
	return key, nil
}

func (fake *fakeBlobStore) delayFor(key string) (time.Duration, bool) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for suffix, delay := range fake.delays {
		if strings.HasSuffix(key, suffix) {
			return delay, true
		}
	}
	return 0, false
}

func (fake *fakeBlobStore) shouldFail(key string) bool {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for suffix := range fake.failKeys {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

func (fake *fakeBlobStore) PublicURL(key string) string { return "https://cdn.test/" + key }

func (fake *fakeBlobStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (fake *fakeBlobStore) Remove(_ context.Context, keys ...string) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.removed = append(fake.removed, keys...)
	return nil
}

func (fake *fakeBlobStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (fake *fakeBlobStore) RemoveFolder(_ context.Context, prefix string) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.removedFolders = append(fake.removedFolders, prefix)
	return nil
}

func (fake *fakeBlobStore) removedKeys() []string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]string(nil), fake.removed...)
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (fake *fakeNotifier) NotifyNewChapter(_ context.Context, webtoonID, webtoonTitle, chapterID string, number float64) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.calls = append(fake.calls, chapterID)
	return fake.err
}

func pageFixture(name string) PageFile {
	return PageFile{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        3,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte{0xFF, 0xD8, 0xFF})), nil
		},
	}
}

func newTestOrchestrator(store Store, blobs storage.BlobStore, notifier Notifier) *Orchestrator {
	return NewOrchestrator(store, blobs, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Pipeline

func TestIngestBatch_SingleChapterMilestones(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	notifier := &fakeNotifier{}
	orchestrator := newTestOrchestrator(store, blobs, notifier)

	var events []ProgressEvent
	input := ChapterInput{
		Number: 1,
		Pages:  []PageFile{pageFixture("a.jpg")},
	}

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{input}, func(event ProgressEvent) {
		events = append(events, event)
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "ch-1", results[0].ChapterID)

	var percents []int
	for _, event := range events {
		percents = append(percents, event.Percent)
	}
	assert.Equal(t, []int{0, 10, 20, 90, 90, 100}, percents)

	last := events[len(events)-1]
	assert.Equal(t, StateSuccess, last.State)
	assert.Equal(t, 100, last.OverallPercent)
}

func TestIngestBatch_PageNumbersFollowInputOrder(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	// The first page finishes last; its number and key must not move.
	blobs.delays["page_001.jpg"] = 50 * time.Millisecond

	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	input := ChapterInput{
		Number: 1,
		Pages:  []PageFile{pageFixture("cover.jpg"), pageFixture("x.jpg"), pageFixture("y.jpg")},
	}

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{input}, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)

	require.Len(t, store.insertedRows, 1)
	rows := store.insertedRows[0]
	require.Len(t, rows, 3)
	for index, row := range rows {
		assert.Equal(t, index+1, row.Number)
		assert.Contains(t, row.AssetPath, fmt.Sprintf("page_%03d", index+1))
	}
}

func TestIngestBatch_FailedChapterDoesNotAbortBatch(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	// Chapter 2's only page lands on a key the store refuses.
	blobs.failKeys["ch-2/pages/page_001.jpg"] = true

	inputs := []ChapterInput{
		{Number: 1, Pages: []PageFile{pageFixture("a.jpg")}},
		{Number: 2, Pages: []PageFile{pageFixture("a.jpg")}},
		{Number: 3, Pages: []PageFile{pageFixture("a.jpg")}},
	}

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", inputs, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "page 1")
	assert.True(t, results[2].Success, "chapter 3 must run despite chapter 2 failing")
}

func TestIngestBatch_SlotLockSpansWholeChapterItem(t *testing.T) {
	store := newFakeStore()
	orchestrator := newTestOrchestrator(store, newFakeBlobStore(), &fakeNotifier{})

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 2, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)

	// The destructive page replacement must happen inside the lock window.
	assert.Equal(t, []string{
		"lock 2",
		"upsert 2",
		"delete_pages ch-2",
		"insert_pages ch-2",
		"unlock 2",
	}, store.events)
}

func TestIngestBatch_SlotLockReleasedOnChapterFailure(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	blobs.failKeys["page_001.jpg"] = true
	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 1, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)
	require.NoError(t, err)
	require.False(t, results[0].Success)

	require.NotEmpty(t, store.events)
	assert.Equal(t, "unlock 1", store.events[len(store.events)-1])
}

func TestIngestBatch_LockFailureFailsChapterBeforeAnyWrite(t *testing.T) {
	store := newFakeStore()
	store.lockErr = errors.New("pool exhausted")
	orchestrator := newTestOrchestrator(store, newFakeBlobStore(), &fakeNotifier{})

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 1, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)
	require.NoError(t, err)

	assert.False(t, results[0].Success)
	assert.Zero(t, store.upsertCount)
	assert.Empty(t, store.clearedChapters)
}

func TestIngestBatch_TitlePrefetchFailureAbortsEverything(t *testing.T) {
	store := newFakeStore()
	store.titleErr = dberr.ErrNotFound
	orchestrator := newTestOrchestrator(store, newFakeBlobStore(), &fakeNotifier{})

	results, err := orchestrator.IngestBatch(context.Background(), "w-missing", []ChapterInput{
		{Number: 1, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)

	assert.Error(t, err)
	assert.Nil(t, results)
	assert.Zero(t, store.upsertCount, "no chapter work may start")
}

func TestIngestBatch_UpsertClearsPreviousPages(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	_, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 4, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"ch-4"}, store.clearedChapters)
	assert.Equal(t, []string{storage.ChapterPagesFolder("w-1", "ch-4")}, blobs.removedFolders)
}

func TestIngestBatch_UploadFailureCompensatesUploadedObjects(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	blobs.failKeys["page_003.jpg"] = true
	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 1, Pages: []PageFile{pageFixture("a.jpg"), pageFixture("b.jpg"), pageFixture("c.jpg")}},
	}, nil)
	require.NoError(t, err)
	require.False(t, results[0].Success)

	removed := blobs.removedKeys()
	assert.Len(t, removed, 2, "the two pages that made it up must be removed again")
	assert.Empty(t, store.insertedRows)
}

func TestIngestBatch_InsertFailureCompensates(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("constraint violation")
	blobs := newFakeBlobStore()
	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 1, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)
	require.NoError(t, err)

	assert.False(t, results[0].Success)
	assert.Len(t, blobs.removedKeys(), 1)
}

// # Thumbnails & Notifications

func TestIngestBatch_ThumbnailReplacementRemovesPrevious(t *testing.T) {
	store := newFakeStore()
	previous := "public/w-1/ch-1/thumbnail.png"
	store.previousThumbnail = &previous

	blobs := newFakeBlobStore()
	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	thumbnail := pageFixture("new-thumb.jpg")
	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 1, Thumbnail: &thumbnail, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)

	stored := store.thumbnailPaths["ch-1"]
	require.NotNil(t, stored)
	assert.Equal(t, storage.ThumbnailKey("w-1", "ch-1", "new-thumb.jpg"), *stored)
	assert.Contains(t, blobs.removedKeys(), previous)
}

func TestIngestBatch_RemoveThumbnailFlag(t *testing.T) {
	store := newFakeStore()
	previous := "public/w-1/ch-1/thumbnail.png"
	store.previousThumbnail = &previous

	blobs := newFakeBlobStore()
	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 1, RemoveThumbnail: true, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)

	stored, ok := store.thumbnailPaths["ch-1"]
	require.True(t, ok)
	assert.Nil(t, stored)
	assert.Contains(t, blobs.removedKeys(), previous)
}

func TestIngestBatch_NotifierFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{err: errors.New("redis down")}
	orchestrator := newTestOrchestrator(store, newFakeBlobStore(), notifier)

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", []ChapterInput{
		{Number: 1, Pages: []PageFile{pageFixture("a.jpg")}},
	}, nil)
	require.NoError(t, err)

	assert.True(t, results[0].Success, "fan-out is best-effort")
	assert.Equal(t, []string{"ch-1"}, notifier.calls)
}
