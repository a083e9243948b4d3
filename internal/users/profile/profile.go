// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile manages reader-facing account data.

It covers the public profile (username, bio, avatar), admin-side user
listing, and role assignment. The profile row is the source of truth for
a reader's role; access checks elsewhere consult it through the JWT claims
minted at login.
*/
package profile

import "time"

// Profile is the account view returned to its owner and to admins.
type Profile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Bio        string    `json:"bio"`
	AvatarPath string    `json:"-"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	FieldUsername = "username"
	FieldBio      = "bio"
	FieldRole     = "role"
)
