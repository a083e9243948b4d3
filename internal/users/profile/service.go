// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/storage"
)

// # Service Layer

// Service orchestrates business logic for reader profiles.
type Service struct {
	repo   Repository
	blobs  storage.BlobStore
	logger *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repo Repository, blobs storage.BlobStore, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		blobs:  blobs,
		logger: logger,
	}
}

// # Profile Management

func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	p, err := service.repo.GetProfile(context, userID)
	if err != nil {
		return nil, err
	}

	service.resolveAvatarURL(p)
	return p, nil
}

// CurrentRole returns the live role from the profile row. The authentication
// middleware calls this on every signed-in request, so access gates follow a
// role change immediately instead of waiting out the token lifetime.
func (service *Service) CurrentRole(context context.Context, userID string) (string, error) {
	return service.repo.GetRole(context, userID)
}

func (service *Service) ListProfiles(context context.Context, query string, limit, offset int) ([]*Profile, int, error) {
	profiles, total, err := service.repo.ListProfiles(context, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, p := range profiles {
		service.resolveAvatarURL(p)
	}
	return profiles, total, nil
}

// UpdateProfileInput defines the mutable subset of profile fields.
type UpdateProfileInput struct {
	Username *string
	Bio      *string
}

/*
UpdateProfile applies a partial set of changes to a reader's profile.

Description: Fetches the existing state, overrides provided fields, and
synchronizes the change to persistent storage. Username collisions surface
as Conflict through the unique constraint.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *Profile: The updated profile
  - error: Conflict, not found, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*Profile, error) {
	p, err := service.repo.GetProfile(context, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		p.Username = strings.TrimSpace(*input.Username)
	}
	if input.Bio != nil {
		p.Bio = *input.Bio
	}

	if err := service.repo.UpdateProfile(context, p); err != nil {
		return nil, err
	}

	service.logger.Info("profile_updated", slog.String("user_id", userID))

	service.resolveAvatarURL(p)
	return p, nil
}

// # Avatar

// AvatarUpload carries one incoming avatar image file.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

/*
UploadAvatar stores a new avatar image and records its object path.

The object is written first and the row updated second; if the row update
fails the freshly written object is removed again so storage never holds
an avatar no profile points to.

Parameters:
  - context: context.Context
  - userID: string
  - upload: AvatarUpload

Returns:
  - string: Public URL of the stored avatar
  - error: Upload or persistence failures
*/
func (service *Service) UploadAvatar(context context.Context, userID string, upload AvatarUpload) (string, error) {
	if _, err := service.repo.GetProfile(context, userID); err != nil {
		return "", err
	}

	key := storage.AvatarKey(userID, upload.Filename)
	storedKey, err := service.blobs.Upload(context, key, upload.Reader, upload.Size, upload.ContentType)
	if err != nil {
		return "", err
	}

	if err := service.repo.SetAvatarPath(context, userID, storedKey); err != nil {
		if cleanupErr := service.blobs.Remove(context, storedKey); cleanupErr != nil {
			service.logger.Error("avatar_compensation_failed",
				slog.String("user_id", userID),
				slog.String("key", storedKey),
				slog.String("error", cleanupErr.Error()),
			)
		}
		return "", err
	}

	service.logger.Info("avatar_updated", slog.String("user_id", userID))

	return service.blobs.PublicURL(storedKey), nil
}

// # Role Assignment

/*
AssignRole sets a reader's role to an existing role name.

Description: Role names are normalized to lowercase. The role must be
registered in the roles table before it can be assigned; the profile row
is the source of truth for membership checks.

Parameters:
  - context: context.Context
  - userID: string
  - roleName: string

Returns:
  - *Profile: The profile with its new role
  - error: Unprocessable (unknown role), not found, or storage failures
*/
func (service *Service) AssignRole(context context.Context, userID, roleName string) (*Profile, error) {
	name := strings.ToLower(strings.TrimSpace(roleName))
	if name == "" {
		return nil, apperr.ValidationError("Role name is required")
	}

	exists, err := service.repo.RoleExists(context, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.Unprocessable("Role does not exist")
	}

	if err := service.repo.SetRole(context, userID, name); err != nil {
		return nil, err
	}

	service.logger.Info("role_assigned",
		slog.String("user_id", userID),
		slog.String("role", name),
	)

	return service.GetProfile(context, userID)
}

func (service *Service) resolveAvatarURL(p *Profile) {
	if p.AvatarPath != "" {
		p.AvatarURL = service.blobs.PublicURL(p.AvatarPath)
	}
}
