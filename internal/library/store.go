// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import "context"

type Repository interface {
	ListFavorites(context context.Context, userID string, limit, offset int) ([]*FavoriteEntry, int, error)
	IsFavorite(context context.Context, userID, webtoonID string) (bool, error)
	AddFavorite(context context.Context, userID, webtoonID string) error
	RemoveFavorite(context context.Context, userID, webtoonID string) error
}
