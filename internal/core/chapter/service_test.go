// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/toonhive/internal/core/access"
	"github.com/taibuivan/toonhive/internal/platform/dberr"
	"github.com/taibuivan/toonhive/internal/platform/storage"
)

// # Fakes

type fakeRepository struct {
	mu       sync.Mutex
	chapters []*Chapter
	pages    map[string][]*Page
	summary  *WebtoonSummary

	viewBumps   []string
	readMarks   [][2]string
	scanQueries int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		pages:   map[string][]*Page{},
		summary: &WebtoonSummary{ID: "w-1", Title: "Tower of Dawn", Slug: "tower-of-dawn"},
	}
}

func (fake *fakeRepository) addChapter(id string, number float64, requiredRoles ...string) *Chapter {
	ch := &Chapter{ID: id, WebtoonID: "w-1", Number: number, RequiredRoles: requiredRoles}
	fake.chapters = append(fake.chapters, ch)
	return ch
}

func (fake *fakeRepository) ListChapters(_ context.Context, webtoonID string, limit, offset int) ([]*Chapter, int, error) {
	return fake.chapters, len(fake.chapters), nil
}

func (fake *fakeRepository) GetChapter(_ context.Context, id string) (*Chapter, error) {
	for _, ch := range fake.chapters {
		if ch.ID == id {
			return ch, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (fake *fakeRepository) GetWebtoonSummary(_ context.Context, webtoonID string) (*WebtoonSummary, error) {
	return fake.summary, nil
}

func (fake *fakeRepository) ListPages(_ context.Context, chapterID string) ([]*Page, error) {
	return fake.pages[chapterID], nil
}

func (fake *fakeRepository) ListNeighbors(_ context.Context, webtoonID string, number float64, ascending bool, limit, offset int) ([]*NavCandidate, error) {
	fake.mu.Lock()
	fake.scanQueries++
	fake.mu.Unlock()

	var matches []*Chapter
	for _, ch := range fake.chapters {
		if ascending && ch.Number > number {
			matches = append(matches, ch)
		}
		if !ascending && ch.Number < number {
			matches = append(matches, ch)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if ascending {
			return matches[i].Number < matches[j].Number
		}
		return matches[i].Number > matches[j].Number
	})

	if offset >= len(matches) {
		return nil, nil
	}
	matches = matches[offset:]
	if len(matches) > limit {
		matches = matches[:limit]
	}

	candidates := make([]*NavCandidate, len(matches))
	for i, ch := range matches {
		candidates[i] = &NavCandidate{ID: ch.ID, Number: ch.Number, RequiredRoles: ch.RequiredRoles}
	}
	return candidates, nil
}

func (fake *fakeRepository) ListLatest(_ context.Context, limit int) ([]*LatestEntry, error) {
	return fake.feed(limit)
}

func (fake *fakeRepository) ListRandom(_ context.Context, limit int) ([]*LatestEntry, error) {
	return fake.feed(limit)
}

func (fake *fakeRepository) feed(limit int) ([]*LatestEntry, error) {
	var entries []*LatestEntry
	for _, ch := range fake.chapters {
		entries = append(entries, &LatestEntry{
			Chapter:      ch,
			WebtoonTitle: fake.summary.Title,
			WebtoonSlug:  fake.summary.Slug,
		})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (fake *fakeRepository) UpdateChapter(_ context.Context, ch *Chapter) error { return nil }

func (fake *fakeRepository) DeleteChapter(_ context.Context, id string) error { return nil }

func (fake *fakeRepository) IncrementViewCounts(_ context.Context, chapterID string) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.viewBumps = append(fake.viewBumps, chapterID)
	return nil
}

func (fake *fakeRepository) MarkRead(_ context.Context, userID, chapterID string) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.readMarks = append(fake.readMarks, [2]string{userID, chapterID})
	return nil
}

func (fake *fakeRepository) viewBumpCount() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return len(fake.viewBumps)
}

func (fake *fakeRepository) readMarkCount() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return len(fake.readMarks)
}

type fakeBlobs struct{}

func (fakeBlobs) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	return key, nil
}
func (fakeBlobs) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}
func (fakeBlobs) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}
func (fakeBlobs) Remove(_ context.Context, _ ...string) error                  { return nil }
func (fakeBlobs) List(_ context.Context, _ string) ([]storage.ObjectInfo, error) { return nil, nil }
func (fakeBlobs) RemoveFolder(_ context.Context, _ string) error               { return nil }

func newTestService(repo Repository) *Service {
	return NewService(repo, fakeBlobs{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Reader View

func TestResolveReaderView_PublicChapter(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1)
	repo.pages["c-1"] = []*Page{
		{ID: "p-1", ChapterID: "c-1", Number: 1, AssetPath: "public/w-1/c-1/pages/page_001.jpg"},
		{ID: "p-2", ChapterID: "c-1", Number: 2, AssetPath: "public/w-1/c-1/pages/page_002.jpg"},
	}

	service := newTestService(repo)

	view, err := service.ResolveReaderView(context.Background(), access.Viewer{}, "c-1")
	require.NoError(t, err)

	assert.False(t, view.AccessDenied)
	assert.Equal(t, "Tower of Dawn", view.Webtoon.Title)
	require.Len(t, view.Pages, 2)
	assert.Equal(t, "https://cdn.test/public/w-1/c-1/pages/page_001.jpg", view.Pages[0].URL)
	assert.Equal(t, 1, view.Pages[0].Number)
	assert.Nil(t, view.Previous)
	assert.Nil(t, view.Next)
}

func TestResolveReaderView_RestrictedChapterWithholdsPages(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1, "premium")
	repo.pages["c-1"] = []*Page{{ID: "p-1", Number: 1, AssetPath: "x"}}

	service := newTestService(repo)

	view, err := service.ResolveReaderView(context.Background(), access.Viewer{UserID: "u-1", Role: "user"}, "c-1")
	require.NoError(t, err, "denial is a view shape, not an error")

	assert.True(t, view.AccessDenied)
	assert.Equal(t, []string{"premium"}, view.RequiredRoles)
	assert.Nil(t, view.Pages, "a restricted view must carry no page records at all")

	// Restricted reads leave no trace in the counters either.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, repo.viewBumpCount())
	assert.Zero(t, repo.readMarkCount())
}

func TestResolveReaderView_UnknownChapter(t *testing.T) {
	service := newTestService(newFakeRepository())

	_, err := service.ResolveReaderView(context.Background(), access.Viewer{}, "missing")
	assert.Error(t, err)
}

func TestResolveReaderView_SideEffectsRecorded(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1)

	service := newTestService(repo)

	_, err := service.ResolveReaderView(context.Background(), access.Viewer{UserID: "u-1", Role: "user"}, "c-1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return repo.viewBumpCount() == 1 && repo.readMarkCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestResolveReaderView_AnonymousGetsNoReadMark(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1)

	service := newTestService(repo)

	_, err := service.ResolveReaderView(context.Background(), access.Viewer{}, "c-1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return repo.viewBumpCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Zero(t, repo.readMarkCount())
}

// # Navigation

func TestResolveReaderView_NavigationSkipsRestrictedSiblings(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1)
	repo.addChapter("c-2", 2, "premium")
	repo.addChapter("c-3", 3)
	repo.addChapter("c-4", 4, "premium")
	repo.addChapter("c-5", 5)

	service := newTestService(repo)

	view, err := service.ResolveReaderView(context.Background(), access.Viewer{UserID: "u-1", Role: "user"}, "c-3")
	require.NoError(t, err)

	require.NotNil(t, view.Previous)
	assert.Equal(t, "c-1", view.Previous.ID, "previous must skip the restricted chapter 2")
	require.NotNil(t, view.Next)
	assert.Equal(t, "c-5", view.Next.ID, "next must skip the restricted chapter 4")
}

func TestResolveReaderView_AdminSeesNearestSiblings(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1)
	repo.addChapter("c-2", 2, "premium")
	repo.addChapter("c-3", 3)
	repo.addChapter("c-4", 4, "premium")

	service := newTestService(repo)

	view, err := service.ResolveReaderView(context.Background(), access.Viewer{UserID: "u-a", Role: "admin"}, "c-3")
	require.NoError(t, err)

	assert.Equal(t, "c-2", view.Previous.ID)
	assert.Equal(t, "c-4", view.Next.ID)
}

func TestResolveReaderView_NavigationScansPastFullWindow(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-0", 1)
	// Twelve restricted chapters between the readable endpoints force the
	// scan into a second window.
	for i := 0; i < 12; i++ {
		repo.addChapter(fmt.Sprintf("c-gated-%d", i), float64(i+2), "premium")
	}
	repo.addChapter("c-last", 20)

	service := newTestService(repo)

	view, err := service.ResolveReaderView(context.Background(), access.Viewer{UserID: "u-1", Role: "user"}, "c-0")
	require.NoError(t, err)

	require.NotNil(t, view.Next)
	assert.Equal(t, "c-last", view.Next.ID)
}

func TestResolveReaderView_NavigationExhausted(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1)
	repo.addChapter("c-2", 2, "premium")

	service := newTestService(repo)

	view, err := service.ResolveReaderView(context.Background(), access.Viewer{UserID: "u-1", Role: "user"}, "c-1")
	require.NoError(t, err)

	assert.Nil(t, view.Previous, "first chapter has no predecessor")
	assert.Nil(t, view.Next, "the only successor is restricted")
}

// # Feeds

func TestListLatest_AnnotatesAccess(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1)
	repo.addChapter("c-2", 2, "premium")

	service := newTestService(repo)

	entries, err := service.ListLatest(context.Background(), access.Viewer{UserID: "u-1", Role: "user"}, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Accessible)
	assert.False(t, entries[1].Accessible, "restricted entries stay listed but flagged")
}

func TestRandomChapter_SkipsRestricted(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1, "premium")
	repo.addChapter("c-2", 2)

	service := newTestService(repo)

	entry, err := service.RandomChapter(context.Background(), access.Viewer{})
	require.NoError(t, err)
	assert.Equal(t, "c-2", entry.Chapter.ID)
}

func TestRandomChapter_NothingAccessible(t *testing.T) {
	repo := newFakeRepository()
	repo.addChapter("c-1", 1, "premium")

	service := newTestService(repo)

	_, err := service.RandomChapter(context.Background(), access.Viewer{})
	assert.Error(t, err)
}
