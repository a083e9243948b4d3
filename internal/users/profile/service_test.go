// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/storage"
)

// # Fakes

type fakeRepository struct {
	profiles map[string]*Profile
	roles    map[string]bool

	failSetAvatar bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profiles: map[string]*Profile{},
		roles:    map[string]bool{"admin": true, "user": true},
	}
}

func (repository *fakeRepository) GetProfile(_ context.Context, userID string) (*Profile, error) {
	p, ok := repository.profiles[userID]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *p
	return &clone, nil
}

func (repository *fakeRepository) GetRole(_ context.Context, userID string) (string, error) {
	p, ok := repository.profiles[userID]
	if !ok {
		return "", apperr.NotFound("User")
	}
	return p.Role, nil
}

func (repository *fakeRepository) ListProfiles(_ context.Context, query string, _, _ int) ([]*Profile, int, error) {
	var out []*Profile
	for _, p := range repository.profiles {
		if query == "" || strings.Contains(p.Username, query) {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, len(out), nil
}

func (repository *fakeRepository) UpdateProfile(_ context.Context, p *Profile) error {
	stored, ok := repository.profiles[p.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	for id, other := range repository.profiles {
		if id != p.ID && other.Username == p.Username {
			return apperr.Conflict("Username is already taken")
		}
	}
	stored.Username = p.Username
	stored.Bio = p.Bio
	stored.UpdatedAt = time.Now()
	return nil
}

func (repository *fakeRepository) SetAvatarPath(_ context.Context, userID, path string) error {
	if repository.failSetAvatar {
		return errors.New("db down")
	}
	p, ok := repository.profiles[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	p.AvatarPath = path
	return nil
}

func (repository *fakeRepository) SetRole(_ context.Context, userID, role string) error {
	p, ok := repository.profiles[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	p.Role = role
	return nil
}

func (repository *fakeRepository) RoleExists(_ context.Context, name string) (bool, error) {
	return repository.roles[name], nil
}

type fakeBlobs struct {
	uploaded []string
	removed  []string
}

func (blobs *fakeBlobs) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	blobs.uploaded = append(blobs.uploaded, key)
	return key, nil
}

func (blobs *fakeBlobs) PublicURL(key string) string { return "https://cdn.test/" + key }

func (blobs *fakeBlobs) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/signed/" + key, nil
}

func (blobs *fakeBlobs) Remove(_ context.Context, keys ...string) error {
	blobs.removed = append(blobs.removed, keys...)
	return nil
}

func (blobs *fakeBlobs) List(_ context.Context, _ string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (blobs *fakeBlobs) RemoveFolder(_ context.Context, prefix string) error {
	blobs.removed = append(blobs.removed, prefix+"/*")
	return nil
}

func newTestService(repo *fakeRepository, blobs *fakeBlobs) *Service {
	return NewService(repo, blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedProfile(repo *fakeRepository, id, username string) *Profile {
	p := &Profile{ID: id, Username: username, Email: username + "@example.com", Role: "user"}
	repo.profiles[id] = p
	return p
}

// # Tests

func TestUpdateProfile_AppliesPartialChanges(t *testing.T) {
	repo := newFakeRepository()
	seedProfile(repo, "u-1", "mina")
	service := newTestService(repo, &fakeBlobs{})

	bio := "reads too much"
	updated, err := service.UpdateProfile(context.Background(), "u-1", UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, "mina", updated.Username, "untouched field keeps its value")
	assert.Equal(t, "reads too much", updated.Bio)
}

func TestUpdateProfile_UsernameCollision(t *testing.T) {
	repo := newFakeRepository()
	seedProfile(repo, "u-1", "mina")
	seedProfile(repo, "u-2", "rena")
	service := newTestService(repo, &fakeBlobs{})

	taken := "rena"
	_, err := service.UpdateProfile(context.Background(), "u-1", UpdateProfileInput{Username: &taken})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestUploadAvatar_PersistsPathAndResolvesURL(t *testing.T) {
	repo := newFakeRepository()
	seedProfile(repo, "u-1", "mina")
	blobs := &fakeBlobs{}
	service := newTestService(repo, blobs)

	url, err := service.UploadAvatar(context.Background(), "u-1", AvatarUpload{
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("data"),
	})
	require.NoError(t, err)

	assert.Contains(t, url, "u-1")
	assert.NotEmpty(t, repo.profiles["u-1"].AvatarPath)
	assert.Len(t, blobs.uploaded, 1)
}

func TestUploadAvatar_CompensatesOnPersistFailure(t *testing.T) {
	repo := newFakeRepository()
	seedProfile(repo, "u-1", "mina")
	repo.failSetAvatar = true
	blobs := &fakeBlobs{}
	service := newTestService(repo, blobs)

	_, err := service.UploadAvatar(context.Background(), "u-1", AvatarUpload{
		Filename: "me.png", ContentType: "image/png", Size: 4, Reader: strings.NewReader("data"),
	})
	require.Error(t, err)

	// The orphaned object was removed again.
	require.Len(t, blobs.uploaded, 1)
	assert.Equal(t, blobs.uploaded, blobs.removed)
}

func TestAssignRole_NormalizesAndValidates(t *testing.T) {
	repo := newFakeRepository()
	seedProfile(repo, "u-1", "mina")
	repo.roles["vip"] = true
	service := newTestService(repo, &fakeBlobs{})

	p, err := service.AssignRole(context.Background(), "u-1", "  VIP ")
	require.NoError(t, err)
	assert.Equal(t, "vip", p.Role)
}

func TestAssignRole_RejectsUnknownRole(t *testing.T) {
	repo := newFakeRepository()
	seedProfile(repo, "u-1", "mina")
	service := newTestService(repo, &fakeBlobs{})

	_, err := service.AssignRole(context.Background(), "u-1", "ghost-role")
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
	assert.Equal(t, "user", repo.profiles["u-1"].Role)
}
