// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter manages chapter records, their page sequences, and the
reader view: the single payload a reading client needs to render a chapter
and move through a series.

# Access Model

Chapters may be gated by required roles. A gated chapter a viewer cannot
read still resolves, but as a restricted view: identifying metadata and the
role requirements are returned, page records are withheld entirely, and the
HTTP status stays 200. Navigation links always point at the nearest chapter
the SAME viewer can actually read, so a restricted sibling is skipped rather
than offered as a dead end.
*/
package chapter

import "time"

// Chapter represents one released chapter of a series.
type Chapter struct {
	ID            string    `json:"id"`
	WebtoonID     string    `json:"webtoon_id"`
	Number        float64   `json:"number"`
	ThumbnailPath *string   `json:"-"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	RequiredRoles []string  `json:"required_roles"`
	ViewCount     int64     `json:"view_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Page is one image in a chapter's reading sequence. Numbers are contiguous
// and 1-based; any mutation of a chapter's pages renumbers the whole set.
type Page struct {
	ID        string `json:"id"`
	ChapterID string `json:"-"`
	Number    int    `json:"number"`
	AssetPath string `json:"-"`
	URL       string `json:"url"`
}

// WebtoonSummary is the slice of series metadata the reader needs.
type WebtoonSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	ShowPublicViews bool   `json:"show_public_views"`
}

// NavigationRef is a link to an adjacent chapter the viewer can read.
type NavigationRef struct {
	ID     string  `json:"id"`
	Number float64 `json:"number"`
}

// NavCandidate is one row considered during a navigation scan. RequiredRoles
// rides along so the scan can evaluate access without extra round trips.
type NavCandidate struct {
	ID            string
	Number        float64
	RequiredRoles []string
}

// ReaderView is the full payload for rendering a chapter.
//
// When AccessDenied is true, Pages is nil: a restricted chapter's content
// is withheld entirely, not truncated.
type ReaderView struct {
	Chapter       *Chapter        `json:"chapter"`
	Webtoon       *WebtoonSummary `json:"webtoon"`
	AccessDenied  bool            `json:"access_denied"`
	RequiredRoles []string        `json:"required_roles"`
	Pages         []*Page         `json:"pages,omitempty"`
	Previous      *NavigationRef  `json:"previous"`
	Next          *NavigationRef  `json:"next"`
}

// LatestEntry is one row of the cross-series latest-releases feed, annotated
// with whether the requesting viewer may read it.
type LatestEntry struct {
	Chapter      *Chapter `json:"chapter"`
	WebtoonTitle string   `json:"webtoon_title"`
	WebtoonSlug  string   `json:"webtoon_slug"`
	Accessible   bool     `json:"accessible"`
}

const (
	FieldNumber        = "number"
	FieldRequiredRoles = "required_roles"
)
