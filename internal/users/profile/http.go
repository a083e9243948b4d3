// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/constants"
	"github.com/taibuivan/toonhive/internal/platform/middleware"
	requestutil "github.com/taibuivan/toonhive/internal/platform/request"
	"github.com/taibuivan/toonhive/internal/platform/respond"
	"github.com/taibuivan/toonhive/internal/platform/validate"
	"github.com/taibuivan/toonhive/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with profile endpoints.
//
// # Endpoints
//   - GET  /me             : Own profile.
//   - PATCH /me            : Update username/bio.
//   - PUT  /me/avatar      : Replace avatar image.
//   - GET  /               : List users (admin).
//   - PUT  /{userID}/role  : Assign a role (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getOwnProfile)
	router.Patch("/me", handler.updateOwnProfile)
	router.Put("/me/avatar", handler.uploadAvatar)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/", handler.listProfiles)
		r.Put("/{userID}/role", handler.assignRole)
	})

	return router
}

func (handler *Handler) getOwnProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	p, err := handler.service.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, p)
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

func (handler *Handler) updateOwnProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Username != nil {
		validator.Required(FieldUsername, *input.Username).
			MinLen(FieldUsername, *input.Username, 3)
	}
	if input.Bio != nil {
		validator.MaxLen(FieldBio, *input.Bio, 500)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	p, err := handler.service.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Username: input.Username,
		Bio:      input.Bio,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, p)
}

func (handler *Handler) uploadAvatar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.MaxPageUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart form"))
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Missing file field"))
		return
	}
	defer func() { _ = file.Close() }()

	url, err := handler.service.UploadAvatar(request.Context(), userID, AvatarUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"url": url})
}

func (handler *Handler) listProfiles(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query().Get("q")

	profiles, total, err := handler.service.ListProfiles(request.Context(), query, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, profiles, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "userID")

	var input assignRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRole, input.Role)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	p, err := handler.service.AssignRole(request.Context(), userID, input.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, p)
}
