// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package webtoon

import (
	"context"
	"fmt"
	"strconv"

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

// selectColumns is the shared projection for full webtoon reads.
func selectColumns() string {
	t := schema.CoreWebtoon
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Title, t.Slug, t.Description, t.Tags, t.CoverPath, t.BannerPath,
		t.IsBanner, t.ShowPublicViews, t.ViewCount, t.CreatedAt, t.UpdatedAt,
	)
}

func scanWebtoon(row interface{ Scan(dest ...any) error }) (*Webtoon, error) {
	w := &Webtoon{}
	err := row.Scan(
		&w.ID, &w.Title, &w.Slug, &w.Description, &w.Tags, &w.CoverPath, &w.BannerPath,
		&w.IsBanner, &w.ShowPublicViews, &w.ViewCount, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

func (repository *PostgresRepository) ListWebtoons(context context.Context, f Filter, limit, offset int) ([]*Webtoon, int, error) {
	t := schema.CoreWebtoon

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE true`, selectColumns(), t.Table)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE true`, t.Table)

	args := []any{}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		cond := fmt.Sprintf(" AND %s ILIKE $%d", t.Title, len(args))
		query += cond
		countQuery += cond
	}

	if f.Tag != "" {
		args = append(args, f.Tag)
		cond := fmt.Sprintf(" AND $%d = ANY(%s)", len(args), t.Tags)
		query += cond
		countQuery += cond
	}

	if f.BannerOnly {
		cond := fmt.Sprintf(" AND %s = true", t.IsBanner)
		query += cond
		countQuery += cond
	}

	countArgs := make([]any, len(args))
	copy(countArgs, args)

	query += fmt.Sprintf(" ORDER BY %s DESC LIMIT $", t.CreatedAt) + itos(len(args)+1) + ` OFFSET $` + itos(len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_webtoons")
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_webtoons")
	}
	defer rows.Close()

	var webtoons []*Webtoon
	for rows.Next() {
		w, err := scanWebtoon(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_webtoon")
		}
		webtoons = append(webtoons, w)
	}

	return webtoons, total, nil
}

func (repository *PostgresRepository) GetWebtoon(context context.Context, id string) (*Webtoon, error) {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns(), t.Table, t.ID)

	w, err := scanWebtoon(repository.db.QueryRow(context, query, id))
	return w, dberr.Wrap(err, "get_webtoon")
}

func (repository *PostgresRepository) GetWebtoonBySlug(context context.Context, slug string) (*Webtoon, error) {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns(), t.Table, t.Slug)

	w, err := scanWebtoon(repository.db.QueryRow(context, query, slug))
	return w, dberr.Wrap(err, "get_webtoon_by_slug")
}

func (repository *PostgresRepository) GetWebtoonTitle(context context.Context, id string) (string, error) {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, t.Title, t.Table, t.ID)

	var title string
	err := repository.db.QueryRow(context, query, id).Scan(&title)
	return title, dberr.Wrap(err, "get_webtoon_title")
}

func (repository *PostgresRepository) CreateWebtoon(context context.Context, w *Webtoon) error {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s
	`,
		t.Table, t.ID, t.Title, t.Slug, t.Description, t.Tags, t.IsBanner,
		t.ShowPublicViews, t.CreatedAt, t.UpdatedAt,
		t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		w.ID, w.Title, w.Slug, w.Description, w.Tags, w.IsBanner, w.ShowPublicViews,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	return dberr.Wrap(err, "create_webtoon")
}

func (repository *PostgresRepository) UpdateWebtoon(context context.Context, w *Webtoon) error {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.Title, t.Slug, t.Description, t.Tags, t.IsBanner, t.ShowPublicViews,
		t.UpdatedAt, t.ID, t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		w.ID, w.Title, w.Slug, w.Description, w.Tags, w.IsBanner, w.ShowPublicViews,
	).Scan(&w.UpdatedAt)
	return dberr.Wrap(err, "update_webtoon")
}

func (repository *PostgresRepository) DeleteWebtoon(context context.Context, id string) error {
	t := schema.CoreWebtoon

	// Chapter and page rows go with the series via ON DELETE CASCADE.
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_webtoon")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) SetCoverPath(context context.Context, id, path string) error {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		t.Table, t.CoverPath, t.UpdatedAt, t.ID,
	)

	cmd, err := repository.db.Exec(context, query, id, path)
	if err != nil {
		return dberr.Wrap(err, "set_cover_path")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) SetBannerPath(context context.Context, id, path string) error {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		t.Table, t.BannerPath, t.UpdatedAt, t.ID,
	)

	cmd, err := repository.db.Exec(context, query, id, path)
	if err != nil {
		return dberr.Wrap(err, "set_banner_path")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) IncrementViewCount(context context.Context, id string) error {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		t.Table, t.ViewCount, t.ViewCount, t.ID,
	)

	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "increment_webtoon_views")
}

func itos(i int) string {
	return strconv.Itoa(i)
}
