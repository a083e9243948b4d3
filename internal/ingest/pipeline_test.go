// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/toonhive/internal/core/access"
	"github.com/taibuivan/toonhive/internal/core/chapter"
	"github.com/taibuivan/toonhive/internal/platform/storage"
)

// # Shared Fakes

// memoryBlobStore keeps uploaded bytes so a later fetch can be compared with
// what went in. Both the ingestion and the reader side of the round trip
// share one instance.
type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{objects: map[string][]byte{}}
}

func (store *memoryBlobStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.objects[key] = data
	return key, nil
}

func (store *memoryBlobStore) PublicURL(key string) string { return "https://cdn.test/" + key }

func (store *memoryBlobStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return store.PublicURL(key), nil
}

func (store *memoryBlobStore) Remove(_ context.Context, keys ...string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, key := range keys {
		delete(store.objects, key)
	}
	return nil
}

func (store *memoryBlobStore) RemoveFolder(_ context.Context, prefix string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for key := range store.objects {
		if strings.HasPrefix(key, prefix) {
			delete(store.objects, key)
		}
	}
	return nil
}

func (store *memoryBlobStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var infos []storage.ObjectInfo
	for key := range store.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, storage.ObjectInfo{Key: key})
		}
	}
	return infos, nil
}

func (store *memoryBlobStore) get(key string) ([]byte, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	data, ok := store.objects[key]
	return data, ok
}

// readerRepository serves the reader side of the round trip from the rows the
// ingestion side persisted.
type readerRepository struct {
	chapter *chapter.Chapter
	summary *chapter.WebtoonSummary
	pages   []*chapter.Page
}

func (repo *readerRepository) GetChapter(_ context.Context, id string) (*chapter.Chapter, error) {
	return repo.chapter, nil
}

func (repo *readerRepository) GetWebtoonSummary(_ context.Context, webtoonID string) (*chapter.WebtoonSummary, error) {
	return repo.summary, nil
}

func (repo *readerRepository) ListPages(_ context.Context, chapterID string) ([]*chapter.Page, error) {
	return repo.pages, nil
}

func (repo *readerRepository) ListChapters(_ context.Context, webtoonID string, limit, offset int) ([]*chapter.Chapter, int, error) {
	return nil, 0, nil
}

func (repo *readerRepository) ListNeighbors(_ context.Context, webtoonID string, number float64, ascending bool, limit, offset int) ([]*chapter.NavCandidate, error) {
	return nil, nil
}

func (repo *readerRepository) ListLatest(_ context.Context, limit int) ([]*chapter.LatestEntry, error) {
	return nil, nil
}

func (repo *readerRepository) ListRandom(_ context.Context, limit int) ([]*chapter.LatestEntry, error) {
	return nil, nil
}

func (repo *readerRepository) UpdateChapter(_ context.Context, ch *chapter.Chapter) error { return nil }

func (repo *readerRepository) DeleteChapter(_ context.Context, id string) error { return nil }

func (repo *readerRepository) IncrementViewCounts(_ context.Context, chapterID string) error {
	return nil
}

func (repo *readerRepository) MarkRead(_ context.Context, userID, chapterID string) error { return nil }

// # Round Trip

// TestArchiveToReaderRoundTrip runs an archive through extraction and
// ingestion, then resolves the chapter through the reader service against the
// same object store, and checks the reader serves back exactly the bytes the
// archive carried, in page order.
func TestArchiveToReaderRoundTrip(t *testing.T) {
	pageContents := [][]byte{
		[]byte("first page body"),
		[]byte("second page body"),
		[]byte("third page body"),
	}

	// Entry names are deliberately unsorted; natural ordering must fix them.
	var archiveBuffer bytes.Buffer
	archiveWriter := zip.NewWriter(&archiveBuffer)
	for _, entry := range []struct {
		name string
		body []byte
	}{
		{"Chapter 7/10.jpg", pageContents[2]},
		{"Chapter 7/2.jpg", pageContents[1]},
		{"Chapter 7/1.jpg", pageContents[0]},
	} {
		entryWriter, err := archiveWriter.Create(entry.name)
		require.NoError(t, err)
		_, err = entryWriter.Write(entry.body)
		require.NoError(t, err)
	}
	require.NoError(t, archiveWriter.Close())

	inputs, err := ExtractArchive(bytes.NewReader(archiveBuffer.Bytes()), int64(archiveBuffer.Len()))
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	blobs := newMemoryBlobStore()
	store := newFakeStore()
	orchestrator := newTestOrchestrator(store, blobs, &fakeNotifier{})

	results, err := orchestrator.IngestBatch(context.Background(), "w-1", inputs, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)
	require.Len(t, store.insertedRows, 1)

	// Feed the persisted rows to the reader side, same blob store.
	rows := store.insertedRows[0]
	repo := &readerRepository{
		chapter: &chapter.Chapter{ID: results[0].ChapterID, WebtoonID: "w-1", Number: 7},
		summary: &chapter.WebtoonSummary{ID: "w-1", Title: "Tower of Dawn", Slug: "tower-of-dawn"},
	}
	for _, row := range rows {
		repo.pages = append(repo.pages, &chapter.Page{
			ID:        row.ID,
			ChapterID: row.ChapterID,
			Number:    row.Number,
			AssetPath: row.AssetPath,
		})
	}

	reader := chapter.NewService(repo, blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	view, err := reader.ResolveReaderView(context.Background(), access.Viewer{}, results[0].ChapterID)
	require.NoError(t, err)
	require.False(t, view.AccessDenied)
	require.Len(t, view.Pages, len(pageContents))

	for index, page := range view.Pages {
		assert.Equal(t, index+1, page.Number)

		key := strings.TrimPrefix(page.URL, "https://cdn.test/")
		stored, ok := blobs.get(key)
		require.True(t, ok, "page %d must resolve to a stored object", page.Number)
		assert.Equal(t, pageContents[index], stored, "page %d bytes must survive the round trip", page.Number)
	}
}
