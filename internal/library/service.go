// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"

	"github.com/taibuivan/toonhive/internal/platform/storage"
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

func (service *Service) ListFavorites(context context.Context, userID string, limit, offset int) ([]*FavoriteEntry, int, error) {
	entries, total, err := service.repo.ListFavorites(context, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, entry := range entries {
		if entry.CoverPath != nil {
			entry.CoverURL = service.blobs.PublicURL(*entry.CoverPath)
		}
	}
	return entries, total, nil
}

// ToggleFavorite flips the follow state and reports the new one.
func (service *Service) ToggleFavorite(context context.Context, userID, webtoonID string) (favorited bool, err error) {
	existing, err := service.repo.IsFavorite(context, userID, webtoonID)
	if err != nil {
		return false, err
	}

	if existing {
		if err := service.repo.RemoveFavorite(context, userID, webtoonID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := service.repo.AddFavorite(context, userID, webtoonID); err != nil {
		return false, err
	}

	service.logger.Info("webtoon_favorited",
		slog.String("user_id", userID),
		slog.String("webtoon_id", webtoonID),
	)
	return true, nil
}
