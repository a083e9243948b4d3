// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package webtoon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/storage"
)

// # Fakes

type fakeRepository struct {
	webtoons map[string]*Webtoon

	failSetCover bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{webtoons: map[string]*Webtoon{}}
}

func (fake *fakeRepository) ListWebtoons(_ context.Context, f Filter, _, _ int) ([]*Webtoon, int, error) {
	var out []*Webtoon
	for _, w := range fake.webtoons {
		if f.BannerOnly && !w.IsBanner {
			continue
		}
		out = append(out, w)
	}
	return out, len(out), nil
}

func (fake *fakeRepository) GetWebtoon(_ context.Context, id string) (*Webtoon, error) {
	w, ok := fake.webtoons[id]
	if !ok {
		return nil, apperr.NotFound("Webtoon")
	}
	return w, nil
}

func (fake *fakeRepository) GetWebtoonBySlug(_ context.Context, slug string) (*Webtoon, error) {
	for _, w := range fake.webtoons {
		if w.Slug == slug {
			return w, nil
		}
	}
	return nil, apperr.NotFound("Webtoon")
}

func (fake *fakeRepository) GetWebtoonTitle(_ context.Context, id string) (string, error) {
	w, err := fake.GetWebtoon(context.Background(), id)
	if err != nil {
		return "", err
	}
	return w.Title, nil
}

func (fake *fakeRepository) CreateWebtoon(_ context.Context, w *Webtoon) error {
	for _, existing := range fake.webtoons {
		if existing.Slug == w.Slug {
			return apperr.Conflict("Slug is already in use")
		}
	}
	fake.webtoons[w.ID] = w
	return nil
}

func (fake *fakeRepository) UpdateWebtoon(_ context.Context, w *Webtoon) error {
	if _, ok := fake.webtoons[w.ID]; !ok {
		return apperr.NotFound("Webtoon")
	}
	fake.webtoons[w.ID] = w
	return nil
}

func (fake *fakeRepository) DeleteWebtoon(_ context.Context, id string) error {
	if _, ok := fake.webtoons[id]; !ok {
		return apperr.NotFound("Webtoon")
	}
	delete(fake.webtoons, id)
	return nil
}

func (fake *fakeRepository) SetCoverPath(_ context.Context, id, path string) error {
	if fake.failSetCover {
		return errors.New("db down")
	}
	w, ok := fake.webtoons[id]
	if !ok {
		return apperr.NotFound("Webtoon")
	}
	w.CoverPath = &path
	return nil
}

func (fake *fakeRepository) SetBannerPath(_ context.Context, id, path string) error {
	w, ok := fake.webtoons[id]
	if !ok {
		return apperr.NotFound("Webtoon")
	}
	w.BannerPath = &path
	return nil
}

func (fake *fakeRepository) IncrementViewCount(_ context.Context, id string) error {
	if w, ok := fake.webtoons[id]; ok {
		w.ViewCount++
	}
	return nil
}

type fakeBlobs struct {
	uploaded []string
	removed  []string
}

func (blobs *fakeBlobs) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	blobs.uploaded = append(blobs.uploaded, key)
	return key, nil
}

func (blobs *fakeBlobs) PublicURL(key string) string { return "https://cdn.test/" + key }

func (blobs *fakeBlobs) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/signed/" + key, nil
}

func (blobs *fakeBlobs) Remove(_ context.Context, keys ...string) error {
	blobs.removed = append(blobs.removed, keys...)
	return nil
}

func (blobs *fakeBlobs) List(_ context.Context, _ string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (blobs *fakeBlobs) RemoveFolder(_ context.Context, prefix string) error {
	blobs.removed = append(blobs.removed, prefix+"/*")
	return nil
}

func newTestService(repo *fakeRepository, blobs *fakeBlobs) *Service {
	return NewService(repo, blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Tests

func TestCreateWebtoon_DerivesSlugAndDedupesTags(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeBlobs{})

	w := &Webtoon{
		Title: "Tower of Dawn",
		Tags:  []string{"action", "drama", "action"},
	}
	require.NoError(t, service.CreateWebtoon(context.Background(), w))

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "tower-of-dawn", w.Slug)
	assert.Equal(t, []string{"action", "drama"}, w.Tags)
}

func TestCreateWebtoon_KeepsExplicitSlug(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeBlobs{})

	w := &Webtoon{Title: "Tower of Dawn", Slug: "tod"}
	require.NoError(t, service.CreateWebtoon(context.Background(), w))
	assert.Equal(t, "tod", w.Slug)
}

func TestCreateWebtoon_RejectsMissingTitle(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeBlobs{})

	err := service.CreateWebtoon(context.Background(), &Webtoon{Slug: "x"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestGetWebtoon_ResolvesAssetURLs(t *testing.T) {
	repo := newFakeRepository()
	cover := "public/w-1/cover.png"
	repo.webtoons["w-1"] = &Webtoon{ID: "w-1", Title: "T", Slug: "t", CoverPath: &cover}
	service := newTestService(repo, &fakeBlobs{})

	w, err := service.GetWebtoon(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/public/w-1/cover.png", w.CoverURL)
	assert.Empty(t, w.BannerURL)
}

func TestDeleteWebtoon_RemovesStorageFolder(t *testing.T) {
	repo := newFakeRepository()
	repo.webtoons["w-1"] = &Webtoon{ID: "w-1", Title: "T", Slug: "t"}
	blobs := &fakeBlobs{}
	service := newTestService(repo, blobs)

	require.NoError(t, service.DeleteWebtoon(context.Background(), "w-1"))
	assert.Empty(t, repo.webtoons)
	require.Len(t, blobs.removed, 1)
	assert.Contains(t, blobs.removed[0], "w-1")
}

func TestUploadCover_CompensatesOnPersistFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.webtoons["w-1"] = &Webtoon{ID: "w-1", Title: "T", Slug: "t"}
	repo.failSetCover = true
	blobs := &fakeBlobs{}
	service := newTestService(repo, blobs)

	_, err := service.UploadCover(context.Background(), "w-1", AssetUpload{
		Filename:    "cover.png",
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("data"),
	})
	require.Error(t, err)

	// The orphaned object was removed again.
	require.Len(t, blobs.uploaded, 1)
	assert.Equal(t, blobs.uploaded, blobs.removed)
}
