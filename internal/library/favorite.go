// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package library tracks each reader's personal collection: the series they
// follow. Favorites drive the new-chapter notification fan-out.
package library

import "time"

// Favorite marks one series a reader follows.
type Favorite struct {
	UserID    string    `json:"user_id"`
	WebtoonID string    `json:"webtoon_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteEntry is a favorite joined with series metadata for listings.
type FavoriteEntry struct {
	WebtoonID string    `json:"webtoon_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CoverURL  string    `json:"cover_url,omitempty"`
	CoverPath *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
