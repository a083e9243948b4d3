// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package webtoon provides the HTTP interface for catalogue discovery and management.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors (GET /webtoons).
  - Restricted (v1): Mutative endpoints requiring the Admin role (POST, PATCH,
    DELETE, asset uploads).

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package webtoon

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/constants"
	"github.com/taibuivan/toonhive/internal/platform/middleware"
	requestutil "github.com/taibuivan/toonhive/internal/platform/request"
	"github.com/taibuivan/toonhive/internal/platform/respond"
	"github.com/taibuivan/toonhive/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/", handler.listWebtoons)
	router.Get("/{id}", handler.getWebtoon)
	router.Get("/slug/{slug}", handler.getWebtoonBySlug)

	// Admin Only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireAdmin)

		adminRoute.Post("/", handler.createWebtoon)
		adminRoute.Patch("/{id}", handler.updateWebtoon)
		adminRoute.Delete("/{id}", handler.deleteWebtoon)
		adminRoute.Put("/{id}/cover", handler.uploadCover)
		adminRoute.Put("/{id}/banner", handler.uploadBanner)
	})
}

/*
GET /api/v1/webtoons.

Description: Paginated catalogue browse with optional search and filters.

Request:
  - q: string (title search)
  - tag: string (exact tag match)
  - banner: "true" to restrict to home banner series

Response:
  - 200: []Webtoon with pagination metadata
*/
func (handler *Handler) listWebtoons(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query:      request.URL.Query().Get("q"),
		Tag:        request.URL.Query().Get("tag"),
		BannerOnly: request.URL.Query().Get("banner") == "true",
	}

	webtoons, total, err := handler.service.ListWebtoons(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, webtoons, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getWebtoon(writer http.ResponseWriter, request *http.Request) {
	webtoonID := requestutil.ID(request, "id")

	w, err := handler.service.GetWebtoon(request.Context(), webtoonID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, w)
}

func (handler *Handler) getWebtoonBySlug(writer http.ResponseWriter, request *http.Request) {
	slugValue := requestutil.ID(request, "slug")

	w, err := handler.service.GetWebtoonBySlug(request.Context(), slugValue)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, w)
}

func (handler *Handler) createWebtoon(writer http.ResponseWriter, request *http.Request) {
	var input Webtoon

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateWebtoon(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateWebtoon(writer http.ResponseWriter, request *http.Request) {
	webtoonID := requestutil.ID(request, "id")

	var input Webtoon
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateWebtoon(request.Context(), webtoonID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteWebtoon(writer http.ResponseWriter, request *http.Request) {
	webtoonID := requestutil.ID(request, "id")

	if err := handler.service.DeleteWebtoon(request.Context(), webtoonID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
PUT /api/v1/webtoons/{id}/cover.

Description: Replaces the cover image. Multipart form, file field "file".

Response:
  - 200: {"url": string}
  - 404: Series not found
*/
func (handler *Handler) uploadCover(writer http.ResponseWriter, request *http.Request) {
	handler.uploadAsset(writer, request, handler.service.UploadCover)
}

// PUT /api/v1/webtoons/{id}/banner. Same contract as the cover upload.
func (handler *Handler) uploadBanner(writer http.ResponseWriter, request *http.Request) {
	handler.uploadAsset(writer, request, handler.service.UploadBanner)
}

func (handler *Handler) uploadAsset(
	writer http.ResponseWriter,
	request *http.Request,
	upload func(ctx context.Context, id string, u AssetUpload) (string, error),
) {
	webtoonID := requestutil.ID(request, "id")

	asset, cleanup, err := AssetFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer cleanup()

	url, err := upload(request.Context(), webtoonID, asset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"url": url})
}

// AssetFromRequest extracts the uploaded image from a multipart form.
// The returned cleanup closes the underlying file handle.
func AssetFromRequest(request *http.Request) (AssetUpload, func(), error) {
	if err := request.ParseMultipartForm(constants.MaxPageUploadBytes); err != nil {
		return AssetUpload{}, func() {}, apperr.ValidationError("Invalid multipart form")
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		return AssetUpload{}, func() {}, apperr.ValidationError("Missing file field")
	}

	asset := AssetUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}
	return asset, func() { _ = file.Close() }, nil
}
