// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/constants"
	"github.com/taibuivan/toonhive/internal/platform/ctxutil"
	"github.com/taibuivan/toonhive/internal/platform/middleware"
	requestutil "github.com/taibuivan/toonhive/internal/platform/request"
	"github.com/taibuivan/toonhive/internal/platform/respond"
)

type Handler struct {
	orchestrator    *Orchestrator
	maxArchiveBytes int64
}

func NewHandler(orchestrator *Orchestrator) *Handler {
	return &Handler{
		orchestrator:    orchestrator,
		maxArchiveBytes: constants.MaxArchiveBytes,
	}
}

// RegisterWebtoonRoutes mounts the batch endpoint under /webtoons.
// The route carries its own generous timeout; uploads are slow by nature.
func (handler *Handler) RegisterWebtoonRoutes(router chi.Router) {
	router.With(middleware.RequireAdmin).Post("/{id}/chapters/batch", handler.ingestBatch)
}

// manifestItem describes one chapter in the multipart manifest. The page
// files for number N arrive under the form key "pages[N]", the optional
// thumbnail under "thumbnail[N]".
type manifestItem struct {
	Number          float64  `json:"number"`
	RequiredRoles   []string `json:"required_roles"`
	RemoveThumbnail bool     `json:"remove_thumbnail"`
}

/*
POST /api/v1/webtoons/{id}/chapters/batch.

Description: Publishes one or more chapters in a single request. Two input
shapes are accepted:

  - A single ZIP archive under the form key "archive". Chapter folders and
    page order are derived from the archive layout; an optional
    "required_roles" form value (JSON array) applies to every extracted
    chapter.
  - A "manifest" JSON form value listing chapters, with page and thumbnail
    files keyed by chapter number.

Response:
  - 200: []ChapterResult, one per chapter in input order; individual
    failures are reported in place, not as an HTTP error
  - 404: Series not found (nothing was ingested)
*/
func (handler *Handler) ingestBatch(writer http.ResponseWriter, request *http.Request) {
	webtoonID := requestutil.ID(request, "id")
	logger := ctxutil.GetLogger(request.Context())

	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxArchiveBytes)
	if err := request.ParseMultipartForm(constants.MultipartMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(writer, request, apperr.PayloadTooLarge("Upload exceeds the archive size limit"))
			return
		}
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart form"))
		return
	}

	inputs, archive, err := handler.parseInputs(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if archive != nil {
		// Page open functions read through the archive; it must outlive the
		// whole batch, not just parsing.
		defer archive.Close()
	}
	if len(inputs) == 0 {
		respond.Error(writer, request, apperr.ValidationError("No chapters to ingest"))
		return
	}

	ingestContext, cancel := context.WithTimeout(request.Context(), constants.IngestRequestTimeout)
	defer cancel()

	progress := func(event ProgressEvent) {
		logger.Debug("ingest_progress",
			slog.Float64("chapter_number", event.ChapterNumber),
			slog.String("state", string(event.State)),
			slog.Int("percent", event.Percent),
			slog.Int("overall_percent", event.OverallPercent),
		)
	}

	results, err := handler.orchestrator.IngestBatch(ingestContext, webtoonID, inputs, progress)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, results)
}

// parseInputs builds chapter inputs from either an archive or a manifest.
// The returned closer is non-nil on the archive path: the inputs carry open
// functions backed by the archive file, so the caller closes it only after
// ingestion has finished.
func (handler *Handler) parseInputs(request *http.Request) ([]ChapterInput, io.Closer, error) {
	if archives := request.MultipartForm.File["archive"]; len(archives) > 0 {
		return handler.parseArchive(request, archives[0])
	}
	inputs, err := handler.parseManifest(request)
	return inputs, nil, err
}

func (handler *Handler) parseArchive(request *http.Request, header *multipart.FileHeader) ([]ChapterInput, io.Closer, error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, apperr.ValidationError("Unreadable archive upload")
	}

	// multipart files over the memory threshold are backed by disk and
	// implement io.ReaderAt either way.
	readerAt, ok := file.(io.ReaderAt)
	if !ok {
		file.Close()
		return nil, nil, apperr.ValidationError("Unreadable archive upload")
	}

	inputs, err := ExtractArchive(readerAt, header.Size)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	if raw := request.FormValue("required_roles"); raw != "" {
		var roles []string
		if err := json.Unmarshal([]byte(raw), &roles); err != nil {
			file.Close()
			return nil, nil, apperr.ValidationError("Invalid required_roles value")
		}
		for index := range inputs {
			inputs[index].RequiredRoles = roles
		}
	}

	return inputs, file, nil
}

func (handler *Handler) parseManifest(request *http.Request) ([]ChapterInput, error) {
	raw := request.FormValue("manifest")
	if raw == "" {
		return nil, apperr.ValidationError("Missing archive or manifest")
	}

	var items []manifestItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, apperr.ValidationError("Invalid manifest JSON")
	}

	inputs := make([]ChapterInput, 0, len(items))
	for _, item := range items {
		if item.Number <= 0 {
			return nil, apperr.ValidationError("Chapter numbers must be greater than zero")
		}

		numberKey := strconv.FormatFloat(item.Number, 'f', -1, 64)

		input := ChapterInput{
			Number:          item.Number,
			RequiredRoles:   item.RequiredRoles,
			RemoveThumbnail: item.RemoveThumbnail,
			Pages:           pageFilesFrom(request.MultipartForm.File["pages["+numberKey+"]"]),
		}

		if thumbs := request.MultipartForm.File["thumbnail["+numberKey+"]"]; len(thumbs) > 0 {
			thumbnail := pageFileFrom(thumbs[0])
			input.Thumbnail = &thumbnail
		}

		inputs = append(inputs, input)
	}

	return inputs, nil
}

func pageFilesFrom(headers []*multipart.FileHeader) []PageFile {
	pages := make([]PageFile, len(headers))
	for index, header := range headers {
		pages[index] = pageFileFrom(header)
	}
	return pages
}

func pageFileFrom(header *multipart.FileHeader) PageFile {
	return PageFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}
