// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/toonhive/internal/core/access"
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

// RegisterRoutes mounts the chapter endpoints under /chapters.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public (identity optional; gating is evaluated per chapter)
	router.Get("/latest", handler.listLatest)
	router.Get("/random", handler.randomChapter)
	router.Get("/{id}/reader", handler.getReaderView)

	// Admin Only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireAdmin)

		adminRoute.Patch("/{id}", handler.updateChapter)
		adminRoute.Delete("/{id}", handler.deleteChapter)
	})
}

// RegisterWebtoonRoutes mounts the series-scoped listing under
// /webtoons/{id}/chapters.
func (handler *Handler) RegisterWebtoonRoutes(router chi.Router) {
	router.Get("/{id}/chapters", handler.listChapters)
}

/*
GET /api/v1/chapters/{id}/reader.

Description: The full reader payload: chapter, series summary, ordered page
URLs, and previous/next links the requesting viewer can actually open. A
viewer lacking the chapter's required roles receives the same shape with
access_denied=true and no pages; the status is still 200.

Response:
  - 200: ReaderView
  - 404: Chapter not found
*/
func (handler *Handler) getReaderView(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "id")
	viewer := viewerFrom(request)

	view, err := handler.service.ResolveReaderView(request.Context(), viewer, chapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	webtoonID := requestutil.ID(request, "id")
	paginationParams := pagination.FromRequest(request)

	chapters, total, err := handler.service.ListChapters(request.Context(), webtoonID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) listLatest(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	viewer := viewerFrom(request)

	entries, err := handler.service.ListLatest(request.Context(), viewer, paginationParams.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

func (handler *Handler) randomChapter(writer http.ResponseWriter, request *http.Request) {
	viewer := viewerFrom(request)

	entry, err := handler.service.RandomChapter(request.Context(), viewer)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

func (handler *Handler) updateChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "id")

	var input Chapter
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateChapter(request.Context(), chapterID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "id")

	if err := handler.service.DeleteChapter(request.Context(), chapterID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// viewerFrom builds the access identity from whatever authentication the
// request carried. Anonymous requests yield the zero viewer.
func viewerFrom(request *http.Request) access.Viewer {
	userID, role := requestutil.Requester(request)
	return access.Viewer{UserID: userID, Role: role}
}
