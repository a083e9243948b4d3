// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "strings"

// # User Roles

// Roles on Toonhive are free-form tags stored in the roles table and
// referenced by chapters' required-role lists. Two names are reserved by
// the platform and can never be created, renamed, or deleted.
const (
	// RoleAdmin grants unrestricted access, bypassing chapter role gates.
	RoleAdmin = "admin"

	// RoleUser is the default role for standard registered readers.
	RoleUser = "user"
)

// ReservedRoles lists the immutable core role names.
var ReservedRoles = []string{RoleAdmin, RoleUser}

// IsReservedRole reports whether the given role name (case-insensitive)
// is one of the immutable core roles.
func IsReservedRole(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, reserved := range ReservedRoles {
		if lower == reserved {
			return true
		}
	}
	return false
}
