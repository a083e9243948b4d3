// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice provides small generic helpers for slice manipulation.
package slice

// Contains reports whether v is present in s.
func Contains[T comparable](s []T, v T) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// Map applies fn to every element of s and returns the transformed slice.
func Map[T, U any](s []T, fn func(T) U) []U {
	out := make([]U, len(s))
	for i, item := range s {
		out[i] = fn(item)
	}
	return out
}

// Unique returns s with duplicate entries removed, preserving first-seen order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, item := range s {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Chunk splits s into consecutive sub-slices of at most size elements.
//
// A size of zero or less yields a single chunk containing all of s.
func Chunk[T any](s []T, size int) [][]T {
	if size <= 0 {
		return [][]T{s}
	}

	chunks := make([][]T, 0, (len(s)+size-1)/size)
	for start := 0; start < len(s); start += size {
		end := start + size
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[start:end])
	}
	return chunks
}
