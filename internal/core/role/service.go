// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/sec"
	"github.com/taibuivan/toonhive/internal/platform/validate"
	"github.com/taibuivan/toonhive/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListRoles(context context.Context) ([]*Role, error) {
	roles, err := service.repo.ListRoles(context)
	if err != nil {
		return nil, err
	}

	for _, r := range roles {
		r.Reserved = sec.IsReservedRole(r.Name)
	}
	return roles, nil
}

func (service *Service) GetRole(context context.Context, id string) (*Role, error) {
	r, err := service.repo.GetRole(context, id)
	if err != nil {
		return nil, err
	}

	r.Reserved = sec.IsReservedRole(r.Name)
	return r, nil
}

func (service *Service) CreateRole(context context.Context, r *Role) error {
	r.ID = uuid.New()
	r.Name = strings.ToLower(strings.TrimSpace(r.Name))

	if err := validateRole(r); err != nil {
		return err
	}

	if sec.IsReservedRole(r.Name) {
		return apperr.Conflict("Role name is reserved")
	}

	if err := service.repo.CreateRole(context, r); err != nil {
		return err
	}

	service.logger.Info("role_created", slog.String("role_id", r.ID), slog.String("name", r.Name))
	return nil
}

func (service *Service) UpdateRole(context context.Context, id string, r *Role) error {
	r.ID = id
	r.Name = strings.ToLower(strings.TrimSpace(r.Name))

	if err := validateRole(r); err != nil {
		return err
	}

	// Neither endpoint of a rename may touch a reserved role.
	existing, err := service.repo.GetRole(context, id)
	if err != nil {
		return err
	}
	if sec.IsReservedRole(existing.Name) {
		return apperr.Forbidden("Reserved roles cannot be modified")
	}
	if sec.IsReservedRole(r.Name) {
		return apperr.Conflict("Role name is reserved")
	}

	if err := service.repo.UpdateRole(context, r); err != nil {
		return err
	}

	service.logger.Info("role_updated", slog.String("role_id", id))
	return nil
}

func (service *Service) DeleteRole(context context.Context, id string) error {
	existing, err := service.repo.GetRole(context, id)
	if err != nil {
		return err
	}
	if sec.IsReservedRole(existing.Name) {
		return apperr.Forbidden("Reserved roles cannot be deleted")
	}

	if err := service.repo.DeleteRole(context, id); err != nil {
		return err
	}

	service.logger.Warn("role_deleted", slog.String("role_id", id), slog.String("name", existing.Name))
	return nil
}

func validateRole(r *Role) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, r.Name).MaxLen(FieldName, r.Name, 50).Slug(FieldName, r.Name)

	if r.Description != nil {
		validator.MaxLen(FieldDescription, *r.Description, 500)
	}

	return validator.Err()
}
