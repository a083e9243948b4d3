// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Storage Contracts

// UserRepository abstracts the identity slice of the profile store.
type UserRepository interface {
	// FindByEmail returns the user registered under the given email.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByUsername returns the user registered under the given username.
	FindByUsername(context context.Context, username string) (*User, error)

	// FindByID returns the user with the given ID.
	FindByID(context context.Context, id string) (*User, error)

	// Create persists a brand new user row.
	Create(context context.Context, user *User) error
}

// SessionStore tracks active refresh tokens. Tokens expire on their own
// through the store's TTL mechanism; rotation deletes the old token
// before minting the replacement.
type SessionStore interface {
	// Set associates a refresh token with a userID for the given TTL.
	Set(context context.Context, token, userID string, ttl time.Duration) error

	// Get resolves a refresh token back to its userID.
	// Returns apperr.NotFound when the token is absent or expired.
	Get(context context.Context, token string) (string, error)

	// Delete removes a refresh token, revoking the session.
	Delete(context context.Context, token string) error
}
