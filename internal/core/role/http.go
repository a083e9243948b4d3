// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/toonhive/internal/platform/middleware"
	requestutil "github.com/taibuivan/toonhive/internal/platform/request"
	"github.com/taibuivan/toonhive/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Role names are public: clients show them on gated chapters.
	router.Get("/", handler.listRoles)
	router.Get("/{id}", handler.getRole)

	// Admin Only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireAdmin)

		adminRoute.Post("/", handler.createRole)
		adminRoute.Patch("/{id}", handler.updateRole)
		adminRoute.Delete("/{id}", handler.deleteRole)
	})
}

func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.service.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, roles)
}

func (handler *Handler) getRole(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.ID(request, "id")

	r, err := handler.service.GetRole(request.Context(), roleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, r)
}

func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	var input Role

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateRole(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.ID(request, "id")

	var input Role
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateRole(request.Context(), roleID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteRole(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.ID(request, "id")

	if err := handler.service.DeleteRole(request.Context(), roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
