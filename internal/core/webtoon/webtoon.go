// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package webtoon manages the series catalogue: titles, metadata, discovery
// filters and the cover/banner artwork attached to each series.
package webtoon

import "time"

// Webtoon represents one series in the catalogue.
type Webtoon struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     *string   `json:"description"`
	Tags            []string  `json:"tags"`
	CoverPath       *string   `json:"-"`
	BannerPath      *string   `json:"-"`
	CoverURL        string    `json:"cover_url,omitempty"`
	BannerURL       string    `json:"banner_url,omitempty"`
	IsBanner        bool      `json:"is_banner"`
	ShowPublicViews bool      `json:"show_public_views"`
	ViewCount       int64     `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated catalogue search.
type Filter struct {
	Query      string // ILIKE search against title
	Tag        string // Exact match against one tag
	BannerOnly bool   // Restrict to series flagged for the home banner
}

const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldTags        = "tags"
)
