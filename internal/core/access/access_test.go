// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/toonhive/internal/platform/sec"
)

func TestCanView(t *testing.T) {
	admin := Viewer{UserID: "u-admin", Role: sec.RoleAdmin}
	member := Viewer{UserID: "u-member", Role: "premium"}
	regular := Viewer{UserID: "u-regular", Role: sec.RoleUser}
	anonymous := Viewer{}

	tests := []struct {
		name     string
		viewer   Viewer
		required []string
		want     bool
	}{
		{"admin bypasses any gate", admin, []string{"premium", "vip"}, true},
		{"admin sees public chapters", admin, nil, true},
		{"public chapter, anonymous viewer", anonymous, nil, true},
		{"public chapter, empty slice is public too", anonymous, []string{}, true},
		{"public chapter, regular viewer", regular, nil, true},
		{"gated chapter, anonymous viewer denied", anonymous, []string{"premium"}, false},
		{"gated chapter, matching role", member, []string{"premium"}, true},
		{"gated chapter, matching role among several", member, []string{"vip", "premium"}, true},
		{"gated chapter, non-matching role denied", regular, []string{"premium"}, false},
		{"role match is exact, not hierarchical", regular, []string{"premium", "vip"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanView(tt.viewer, tt.required))
		})
	}
}

func TestViewerAnonymous(t *testing.T) {
	assert.True(t, Viewer{}.Anonymous())
	assert.True(t, Viewer{Role: "premium"}.Anonymous(), "a role without a user id is not an identity")
	assert.False(t, Viewer{UserID: "u-1"}.Anonymous())
}
