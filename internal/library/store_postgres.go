// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/toonhive/internal/platform/database/schema"
	"github.com/taibuivan/toonhive/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListFavorites(context context.Context, userID string, limit, offset int) ([]*FavoriteEntry, int, error) {
	f := schema.LibraryFavorite
	w := schema.CoreWebtoon

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, f.Table, f.UserID)

	var total int
	if err := repository.db.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_favorites")
	}

	query := fmt.Sprintf(`
		SELECT f.%s, w.%s, w.%s, w.%s, f.%s
		FROM %s f
		JOIN %s w ON w.%s = f.%s
		WHERE f.%s = $1
		ORDER BY f.%s DESC
		LIMIT $2 OFFSET $3
	`,
		f.WebtoonID, w.Title, w.Slug, w.CoverPath, f.CreatedAt,
		f.Table, w.Table, w.ID, f.WebtoonID,
		f.UserID, f.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_favorites")
	}
	defer rows.Close()

	var entries []*FavoriteEntry
	for rows.Next() {
		entry := &FavoriteEntry{}
		if err := rows.Scan(&entry.WebtoonID, &entry.Title, &entry.Slug, &entry.CoverPath, &entry.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_favorite")
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}

func (repository *PostgresRepository) IsFavorite(context context.Context, userID, webtoonID string) (bool, error) {
	f := schema.LibraryFavorite
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		f.Table, f.UserID, f.WebtoonID,
	)

	var exists bool
	err := repository.db.QueryRow(context, query, userID, webtoonID).Scan(&exists)
	return exists, dberr.Wrap(err, "is_favorite")
}

func (repository *PostgresRepository) AddFavorite(context context.Context, userID, webtoonID string) error {
	f := schema.LibraryFavorite
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, NOW())
		ON CONFLICT (%s, %s) DO NOTHING
	`, f.Table, f.UserID, f.WebtoonID, f.CreatedAt, f.UserID, f.WebtoonID)

	_, err := repository.db.Exec(context, query, userID, webtoonID)
	return dberr.Wrap(err, "add_favorite")
}

func (repository *PostgresRepository) RemoveFavorite(context context.Context, userID, webtoonID string) error {
	f := schema.LibraryFavorite
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, f.Table, f.UserID, f.WebtoonID)

	_, err := repository.db.Exec(context, query, userID, webtoonID)
	return dberr.Wrap(err, "remove_favorite")
}
