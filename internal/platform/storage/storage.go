// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage defines the object storage contract for binary assets
(chapter pages, thumbnails, covers, banners, avatars) and the MinIO-backed
implementation of it.

Architecture:

  - BlobStore: The abstract contract consumed by domain services. Tests
    substitute an in-memory fake.
  - Client: The MinIO/S3 implementation used in production.
  - Keys: Deterministic object key derivation, so that a chapter's assets
    always live under one prefix and can be removed as a folder.

Upload carries upsert semantics: writing to an existing key overwrites it.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ObjectInfo describes one stored object returned by List.
type ObjectInfo struct {
	// Key is the full object key inside the bucket.
	Key string
	// Size is the object size in bytes.
	Size int64
}

// BlobStore is the storage contract consumed by the domain layer.
type BlobStore interface {

	// Upload writes the object at key, overwriting any existing content.
	// It returns the key it wrote to.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)

	// PublicURL resolves a stored key to a publicly fetchable URL.
	// It performs no I/O and returns "" for an empty key.
	PublicURL(key string) string

	// SignedURL resolves a stored key to a time-limited fetchable URL.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Remove deletes the given objects. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error

	// List returns all objects stored under the given key prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// RemoveFolder lists and deletes every object under the given prefix.
	RemoveFolder(ctx context.Context, prefix string) error
}

// # Object Key Derivation

// Asset keys mirror the reading hierarchy so that deleting a webtoon or a
// chapter is a single prefix removal.
const keyRoot = "public"

// WebtoonFolder returns the storage prefix owning all of a webtoon's assets.
func WebtoonFolder(webtoonID string) string {
	return path.Join(keyRoot, webtoonID)
}

// ChapterFolder returns the storage prefix owning all of a chapter's assets.
func ChapterFolder(webtoonID, chapterID string) string {
	return path.Join(keyRoot, webtoonID, chapterID)
}

// ChapterPagesFolder returns the storage prefix holding a chapter's page images.
func ChapterPagesFolder(webtoonID, chapterID string) string {
	return path.Join(ChapterFolder(webtoonID, chapterID), "pages")
}

// PageKey derives the object key for one chapter page.
//
// The page number is zero-padded so lexical object listings match reading
// order (page_001, page_002, ... page_010).
func PageKey(webtoonID, chapterID string, pageNumber int, filename string) string {
	name := fmt.Sprintf("page_%03d%s", pageNumber, extOf(filename))
	return path.Join(ChapterPagesFolder(webtoonID, chapterID), name)
}

// ThumbnailKey derives the object key for a chapter thumbnail.
func ThumbnailKey(webtoonID, chapterID, filename string) string {
	return path.Join(ChapterFolder(webtoonID, chapterID), "thumbnail"+extOf(filename))
}

// CoverKey derives the object key for a webtoon cover image.
func CoverKey(webtoonID, filename string) string {
	return path.Join(WebtoonFolder(webtoonID), "cover"+extOf(filename))
}

// BannerKey derives the object key for a webtoon banner image.
func BannerKey(webtoonID, filename string) string {
	return path.Join(WebtoonFolder(webtoonID), "banner"+extOf(filename))
}

// AvatarKey derives the object key for a user avatar.
func AvatarKey(userID, filename string) string {
	return path.Join("avatars", userID+extOf(filename))
}

// extOf returns the lowercase file extension including the dot, or "" if none.
func extOf(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "." {
		return ""
	}
	return ext
}
