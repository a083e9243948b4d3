// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package role manages the catalogue of access roles used to gate chapters.
//
// The core roles "admin" and "user" are reserved: they cannot be created,
// renamed, or deleted through this package.
package role

import "time"

// Role represents one grantable access role.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Reserved    bool      `json:"reserved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	FieldName        = "name"
	FieldDescription = "description"
)
