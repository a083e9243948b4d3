// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package webtoon

import (
	"context"
	"io"
	"log/slog"

	"github.com/taibuivan/toonhive/internal/platform/storage"
)

// # Assets & Media

// AssetUpload carries one incoming image file for a cover or banner.
type AssetUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

/*
UploadCover stores a new cover image for a series and records its object path.

The object is written first and the row updated second; if the row update
fails the freshly written object is removed again so storage never holds an
asset no row points to.

Parameters:
  - context: context.Context
  - id: string (UUID of the series)
  - upload: AssetUpload

Returns:
  - string: Public URL of the stored cover
  - error: Upload or persistence failures
*/
func (service *Service) UploadCover(context context.Context, id string, upload AssetUpload) (string, error) {
	return service.uploadAsset(context, id, upload, storage.CoverKey(id, upload.Filename), service.repo.SetCoverPath, "cover")
}

/*
UploadBanner stores a new banner image for a series and records its object path.

Same compensation rules as [Service.UploadCover].
*/
func (service *Service) UploadBanner(context context.Context, id string, upload AssetUpload) (string, error) {
	return service.uploadAsset(context, id, upload, storage.BannerKey(id, upload.Filename), service.repo.SetBannerPath, "banner")
}

func (service *Service) uploadAsset(
	context context.Context,
	id string,
	upload AssetUpload,
	key string,
	persist func(context.Context, string, string) error,
	kind string,
) (string, error) {
	// 1. Ensure the series exists before touching storage
	if _, err := service.repo.GetWebtoonTitle(context, id); err != nil {
		return "", err
	}

	// 2. Write the object
	storedKey, err := service.blobs.Upload(context, key, upload.Reader, upload.Size, upload.ContentType)
	if err != nil {
		return "", err
	}

	// 3. Record the path; compensate the upload on failure
	if err := persist(context, id, storedKey); err != nil {
		if cleanupErr := service.blobs.Remove(context, storedKey); cleanupErr != nil {
			service.logger.Error("asset_compensation_failed",
				slog.String("webtoon_id", id),
				slog.String("key", storedKey),
				slog.String("error", cleanupErr.Error()),
			)
		}
		return "", err
	}

	service.logger.Info("webtoon_asset_uploaded",
		slog.String("webtoon_id", id),
		slog.String("kind", kind),
		slog.String("key", storedKey),
	)
	return service.blobs.PublicURL(storedKey), nil
}
