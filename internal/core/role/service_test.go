// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/internal/platform/dberr"
)

type fakeRepository struct {
	roles map[string]*Role
}

func newFakeRepository(seed ...*Role) *fakeRepository {
	fake := &fakeRepository{roles: map[string]*Role{}}
	for _, r := range seed {
		fake.roles[r.ID] = r
	}
	return fake
}

func (fake *fakeRepository) ListRoles(_ context.Context) ([]*Role, error) {
	var roles []*Role
	for _, r := range fake.roles {
		roles = append(roles, r)
	}
	return roles, nil
}

func (fake *fakeRepository) GetRole(_ context.Context, id string) (*Role, error) {
	if r, ok := fake.roles[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, dberr.ErrNotFound
}

func (fake *fakeRepository) CreateRole(_ context.Context, r *Role) error {
	fake.roles[r.ID] = r
	return nil
}

func (fake *fakeRepository) UpdateRole(_ context.Context, r *Role) error {
	if _, ok := fake.roles[r.ID]; !ok {
		return dberr.ErrNotFound
	}
	fake.roles[r.ID] = r
	return nil
}

func (fake *fakeRepository) DeleteRole(_ context.Context, id string) error {
	if _, ok := fake.roles[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(fake.roles, id)
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateRole(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)

	r := &Role{Name: "  Premium "}
	require.NoError(t, service.CreateRole(context.Background(), r))

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "premium", r.Name, "names are normalized to lowercase")
}

func TestCreateRole_ReservedNameRejected(t *testing.T) {
	service := newTestService(newFakeRepository())

	for _, name := range []string{"admin", "Admin", "USER"} {
		err := service.CreateRole(context.Background(), &Role{Name: name})
		require.Error(t, err, "name %q", name)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	}
}

func TestUpdateRole_ReservedRoleImmutable(t *testing.T) {
	repo := newFakeRepository(&Role{ID: "r-admin", Name: "admin"})
	service := newTestService(repo)

	err := service.UpdateRole(context.Background(), "r-admin", &Role{Name: "superadmin"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestUpdateRole_CannotRenameOntoReserved(t *testing.T) {
	repo := newFakeRepository(&Role{ID: "r-1", Name: "premium"})
	service := newTestService(repo)

	err := service.UpdateRole(context.Background(), "r-1", &Role{Name: "admin"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestDeleteRole_ReservedRoleProtected(t *testing.T) {
	repo := newFakeRepository(&Role{ID: "r-user", Name: "user"})
	service := newTestService(repo)

	err := service.DeleteRole(context.Background(), "r-user")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Contains(t, repo.roles, "r-user")
}

func TestDeleteRole(t *testing.T) {
	repo := newFakeRepository(&Role{ID: "r-1", Name: "premium"})
	service := newTestService(repo)

	require.NoError(t, service.DeleteRole(context.Background(), "r-1"))
	assert.NotContains(t, repo.roles, "r-1")
}

func TestListRoles_FlagsReserved(t *testing.T) {
	repo := newFakeRepository(
		&Role{ID: "r-admin", Name: "admin"},
		&Role{ID: "r-1", Name: "premium"},
	)
	service := newTestService(repo)

	roles, err := service.ListRoles(context.Background())
	require.NoError(t, err)

	flags := map[string]bool{}
	for _, r := range roles {
		flags[r.Name] = r.Reserved
	}
	assert.True(t, flags["admin"])
	assert.False(t, flags["premium"])
}
