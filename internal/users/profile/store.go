// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import "context"

// Repository abstracts profile persistence.
type Repository interface {
	// GetProfile returns the profile for the given user ID.
	GetProfile(context context.Context, userID string) (*Profile, error)

	// GetRole returns only the role recorded on the profile row. Cheap
	// enough to sit on the authentication path of every request.
	GetRole(context context.Context, userID string) (string, error)

	// ListProfiles returns a page of profiles ordered by creation time,
	// optionally filtered by a username/email substring, plus the total count.
	ListProfiles(context context.Context, query string, limit, offset int) ([]*Profile, int, error)

	// UpdateProfile persists the mutable profile fields (username, bio).
	UpdateProfile(context context.Context, p *Profile) error

	// SetAvatarPath records the storage key of the user's avatar.
	SetAvatarPath(context context.Context, userID, path string) error

	// SetRole updates the role recorded on the profile row.
	SetRole(context context.Context, userID, role string) error

	// RoleExists reports whether a role with the given name is registered.
	RoleExists(context context.Context, name string) (bool, error)
}
