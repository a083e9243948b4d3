// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package access implements the chapter visibility policy.
//
// # Policy
//
// Chapters may carry a list of required roles. Evaluation is a pure function
// of the viewer's identity and that list:
//
//   - Administrators see everything.
//   - A chapter with no required roles is public, including to anonymous viewers.
//   - Otherwise the viewer must be authenticated and hold one of the listed roles.
//
// Denial is a normal outcome here, not an error: callers degrade the response
// (withhold pages, skip a navigation candidate) rather than fail the request.
package access

import (
	"github.com/taibuivan/toonhive/internal/platform/sec"
	"github.com/taibuivan/toonhive/pkg/slice"
)

// Viewer is the identity a request resolves to. The zero value is anonymous.
type Viewer struct {
	UserID string
	Role   string
}

// Anonymous reports whether the viewer carries no authenticated identity.
func (v Viewer) Anonymous() bool {
	return v.UserID == ""
}

// CanView reports whether the viewer may read a chapter gated by requiredRoles.
func CanView(viewer Viewer, requiredRoles []string) bool {
	// 1. Administrators bypass all gates
	if viewer.Role == sec.RoleAdmin {
		return true
	}

	// 2. No gate configured: public chapter
	if len(requiredRoles) == 0 {
		return true
	}

	// 3. Gated: must be signed in with a matching role
	if viewer.Anonymous() {
		return false
	}

	return slice.Contains(requiredRoles, viewer.Role)
}
