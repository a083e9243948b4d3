// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package natsort implements natural ordering for strings with embedded numbers.
//
// # Usage
//
// Archive entries are named by people, not machines: "page2.jpg" should come
// before "page10.jpg". Plain lexicographic ordering gets this wrong, so page
// sequencing uses this comparator instead.
package natsort

import (
	"sort"
	"strings"
)

// Compare orders a and b naturally: runs of ASCII digits are compared by
// numeric value, everything else byte-wise. It returns -1, 0, or 1 following
// the convention of [strings.Compare].
func Compare(a, b string) int {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, restA := splitDigits(a)
			nb, restB := splitDigits(b)

			if c := compareNumeric(na, nb); c != 0 {
				return c
			}

			a, b = restA, restB
			continue
		}

		if a[0] != b[0] {
			if a[0] < b[0] {
				return -1
			}
			return 1
		}

		a, b = a[1:], b[1:]
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Strings sorts s in place using natural ordering.
func Strings(s []string) {
	sort.Slice(s, func(i, j int) bool {
		return Compare(s[i], s[j]) < 0
	})
}

// splitDigits slices off the leading digit run of s.
func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareNumeric compares two digit strings by numeric value without parsing,
// so arbitrarily long runs never overflow. Leading zeros are ignored for the
// magnitude comparison; equal values with differing zero-padding tie-break on
// the shorter (less padded) form first for stable ordering.
func compareNumeric(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")

	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}

	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}

	// Same value: "2" sorts before "002".
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
