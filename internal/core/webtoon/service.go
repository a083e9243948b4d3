// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package webtoon

import (
	"context"
	"log/slog"

	"github.com/taibuivan/toonhive/internal/platform/storage"
	"github.com/taibuivan/toonhive/internal/platform/validate"
	"github.com/taibuivan/toonhive/pkg/slice"
	"github.com/taibuivan/toonhive/pkg/slug"
	"github.com/taibuivan/toonhive/pkg/uuid"
)

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

func (service *Service) ListWebtoons(context context.Context, filter Filter, limit, offset int) ([]*Webtoon, int, error) {
	webtoons, total, err := service.repo.ListWebtoons(context, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, w := range webtoons {
		service.resolveAssetURLs(w)
	}
	return webtoons, total, nil
}

func (service *Service) GetWebtoon(context context.Context, id string) (*Webtoon, error) {
	w, err := service.repo.GetWebtoon(context, id)
	if err != nil {
		return nil, err
	}

	service.resolveAssetURLs(w)
	return w, nil
}

func (service *Service) GetWebtoonBySlug(context context.Context, s string) (*Webtoon, error) {
	w, err := service.repo.GetWebtoonBySlug(context, s)
	if err != nil {
		return nil, err
	}

	service.resolveAssetURLs(w)
	return w, nil
}

func (service *Service) CreateWebtoon(context context.Context, w *Webtoon) error {
	w.ID = uuid.New()
	w.Tags = slice.Unique(w.Tags)

	if w.Slug == "" {
		w.Slug = slug.From(w.Title)
	}

	if err := service.validateWebtoon(w); err != nil {
		return err
	}

	if err := service.repo.CreateWebtoon(context, w); err != nil {
		return err
	}

	service.logger.Info("webtoon_created",
		slog.String("webtoon_id", w.ID),
		slog.String("title", w.Title),
	)
	return nil
}

func (service *Service) UpdateWebtoon(context context.Context, id string, w *Webtoon) error {
	w.ID = id
	w.Tags = slice.Unique(w.Tags)

	if w.Slug == "" {
		w.Slug = slug.From(w.Title)
	}

	if err := service.validateWebtoon(w); err != nil {
		return err
	}

	if err := service.repo.UpdateWebtoon(context, w); err != nil {
		return err
	}

	service.logger.Info("webtoon_updated", slog.String("webtoon_id", w.ID))
	return nil
}

// DeleteWebtoon removes the series, its chapters and pages, then the storage
// folder holding every asset uploaded for it. The row delete goes first so
// readers never see a series whose images are already gone.
func (service *Service) DeleteWebtoon(context context.Context, id string) error {
	if err := service.repo.DeleteWebtoon(context, id); err != nil {
		return err
	}

	if err := service.blobs.RemoveFolder(context, storage.WebtoonFolder(id)); err != nil {
		// Rows are gone; orphaned objects are logged so an operator can sweep them.
		service.logger.Error("webtoon_asset_cleanup_failed",
			slog.String("webtoon_id", id),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Warn("webtoon_deleted", slog.String("webtoon_id", id))
	return nil
}

func (service *Service) validateWebtoon(w *Webtoon) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, w.Title).MaxLen(FieldTitle, w.Title, 300)
	validator.Required(FieldSlug, w.Slug).Slug(FieldSlug, w.Slug)

	if w.Description != nil {
		validator.MaxLen(FieldDescription, *w.Description, 5000)
	}

	for _, tag := range w.Tags {
		validator.Required(FieldTags, tag).MaxLen(FieldTags, tag, 50)
	}

	return validator.Err()
}

// resolveAssetURLs fills the public URL fields from the stored object paths.
func (service *Service) resolveAssetURLs(w *Webtoon) {
	if w.CoverPath != nil {
		w.CoverURL = service.blobs.PublicURL(*w.CoverPath)
	}
	if w.BannerPath != nil {
		w.BannerURL = service.blobs.PublicURL(*w.BannerPath)
	}
}
