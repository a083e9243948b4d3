// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package webtoon

import "context"

type Repository interface {
	ListWebtoons(context context.Context, f Filter, limit, offset int) ([]*Webtoon, int, error)
	GetWebtoon(context context.Context, id string) (*Webtoon, error)
	GetWebtoonBySlug(context context.Context, slug string) (*Webtoon, error)
	GetWebtoonTitle(context context.Context, id string) (string, error)
	CreateWebtoon(context context.Context, w *Webtoon) error
	UpdateWebtoon(context context.Context, w *Webtoon) error
	DeleteWebtoon(context context.Context, id string) error
	SetCoverPath(context context.Context, id, path string) error
	SetBannerPath(context context.Context, id, path string) error
	IncrementViewCount(context context.Context, id string) error
}
