// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package natsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"plain ascii", "alpha", "beta", -1},
		{"equal", "page1.jpg", "page1.jpg", 0},
		{"numeric beats lexicographic", "page2.jpg", "page10.jpg", -1},
		{"long digit runs", "99999999999999999998", "99999999999999999999", -1},
		{"mixed segments", "ch1-p2", "ch1-p10", -1},
		{"second segment decides", "ch2-p1", "ch1-p9", 1},
		{"prefix is smaller", "page", "page1", -1},
		{"leading zeros equal value", "page002", "page2", 1},
		{"leading zeros smaller value", "page009", "page10", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a), "comparison should be antisymmetric")
		})
	}
}

func TestStrings(t *testing.T) {
	pages := []string{
		"page10.png",
		"page2.png",
		"page1.png",
		"page11.png",
		"cover.png",
	}

	Strings(pages)

	assert.Equal(t, []string{
		"cover.png",
		"page1.png",
		"page2.png",
		"page10.png",
		"page11.png",
	}, pages)
}
