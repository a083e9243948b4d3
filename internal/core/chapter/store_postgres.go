// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

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

func chapterColumns() string {
	t := schema.CoreChapter
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.WebtoonID, t.Number, t.ThumbnailPath, t.RequiredRoles,
		t.ViewCount, t.CreatedAt, t.UpdatedAt,
	)
}

func scanChapter(row interface{ Scan(dest ...any) error }) (*Chapter, error) {
	ch := &Chapter{}
	err := row.Scan(
		&ch.ID, &ch.WebtoonID, &ch.Number, &ch.ThumbnailPath, &ch.RequiredRoles,
		&ch.ViewCount, &ch.CreatedAt, &ch.UpdatedAt,
	)
	return ch, err
}

func (repository *PostgresRepository) ListChapters(context context.Context, webtoonID string, limit, offset int) ([]*Chapter, int, error) {
	t := schema.CoreChapter

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, t.Table, t.WebtoonID)

	var total int
	if err := repository.db.QueryRow(context, countQuery, webtoonID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_chapters")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3
	`, chapterColumns(), t.Table, t.WebtoonID, t.Number)

	rows, err := repository.db.Query(context, query, webtoonID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_chapters")
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_chapter")
		}
		chapters = append(chapters, ch)
	}

	return chapters, total, nil
}

func (repository *PostgresRepository) GetChapter(context context.Context, id string) (*Chapter, error) {
	t := schema.CoreChapter
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, chapterColumns(), t.Table, t.ID)

	ch, err := scanChapter(repository.db.QueryRow(context, query, id))
	return ch, dberr.Wrap(err, "get_chapter")
}

func (repository *PostgresRepository) GetWebtoonSummary(context context.Context, webtoonID string) (*WebtoonSummary, error) {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		t.ID, t.Title, t.Slug, t.ShowPublicViews, t.Table, t.ID,
	)

	summary := &WebtoonSummary{}
	err := repository.db.QueryRow(context, query, webtoonID).Scan(
		&summary.ID, &summary.Title, &summary.Slug, &summary.ShowPublicViews,
	)
	return summary, dberr.Wrap(err, "get_webtoon_summary")
}

func (repository *PostgresRepository) ListPages(context context.Context, chapterID string) ([]*Page, error) {
	t := schema.CorePage
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`, t.ID, t.ChapterID, t.PageNumber, t.AssetPath, t.Table, t.ChapterID, t.PageNumber)

	rows, err := repository.db.Query(context, query, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_pages")
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		p := &Page{}
		if err := rows.Scan(&p.ID, &p.ChapterID, &p.Number, &p.AssetPath); err != nil {
			return nil, dberr.Wrap(err, "scan_page")
		}
		pages = append(pages, p)
	}

	return pages, nil
}

func (repository *PostgresRepository) ListNeighbors(context context.Context, webtoonID string, number float64, ascending bool, limit, offset int) ([]*NavCandidate, error) {
	t := schema.CoreChapter

	comparison, direction := "<", "DESC"
	if ascending {
		comparison, direction = ">", "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s FROM %s
		WHERE %s = $1 AND %s %s $2
		ORDER BY %s %s
		LIMIT $3 OFFSET $4
	`,
		t.ID, t.Number, t.RequiredRoles, t.Table,
		t.WebtoonID, t.Number, comparison,
		t.Number, direction,
	)

	rows, err := repository.db.Query(context, query, webtoonID, number, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "list_neighbors")
	}
	defer rows.Close()

	var candidates []*NavCandidate
	for rows.Next() {
		c := &NavCandidate{}
		if err := rows.Scan(&c.ID, &c.Number, &c.RequiredRoles); err != nil {
			return nil, dberr.Wrap(err, "scan_neighbor")
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

func (repository *PostgresRepository) ListLatest(context context.Context, limit int) ([]*LatestEntry, error) {
	return repository.listFeed(context, "c."+schema.CoreChapter.CreatedAt+" DESC", limit)
}

func (repository *PostgresRepository) ListRandom(context context.Context, limit int) ([]*LatestEntry, error) {
	return repository.listFeed(context, "random()", limit)
}

// listFeed joins chapters with their series for the cross-series feeds.
func (repository *PostgresRepository) listFeed(context context.Context, orderBy string, limit int) ([]*LatestEntry, error) {
	c := schema.CoreChapter
	w := schema.CoreWebtoon

	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, w.%s, w.%s
		FROM %s c
		JOIN %s w ON w.%s = c.%s
		ORDER BY %s
		LIMIT $1
	`,
		c.ID, c.WebtoonID, c.Number, c.ThumbnailPath, c.RequiredRoles, c.ViewCount, c.CreatedAt, c.UpdatedAt,
		w.Title, w.Slug,
		c.Table, w.Table, w.ID, c.WebtoonID,
		orderBy,
	)

	rows, err := repository.db.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_chapter_feed")
	}
	defer rows.Close()

	var entries []*LatestEntry
	for rows.Next() {
		ch := &Chapter{}
		entry := &LatestEntry{Chapter: ch}
		if err := rows.Scan(
			&ch.ID, &ch.WebtoonID, &ch.Number, &ch.ThumbnailPath, &ch.RequiredRoles,
			&ch.ViewCount, &ch.CreatedAt, &ch.UpdatedAt,
			&entry.WebtoonTitle, &entry.WebtoonSlug,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_chapter_feed")
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (repository *PostgresRepository) UpdateChapter(context context.Context, ch *Chapter) error {
	t := schema.CoreChapter
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.Number, t.RequiredRoles, t.UpdatedAt, t.ID, t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, ch.ID, ch.Number, ch.RequiredRoles).Scan(&ch.UpdatedAt)
	return dberr.Wrap(err, "update_chapter")
}

func (repository *PostgresRepository) DeleteChapter(context context.Context, id string) error {
	t := schema.CoreChapter

	// Page rows go with the chapter via ON DELETE CASCADE.
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_chapter")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) IncrementViewCounts(context context.Context, chapterID string) error {
	c := schema.CoreChapter
	w := schema.CoreWebtoon

	query := fmt.Sprintf(`
		WITH bumped AS (
			UPDATE %s SET %s = %s + 1 WHERE %s = $1 RETURNING %s
		)
		UPDATE %s SET %s = %s + 1
		WHERE %s = (SELECT %s FROM bumped)
	`,
		c.Table, c.ViewCount, c.ViewCount, c.ID, c.WebtoonID,
		w.Table, w.ViewCount, w.ViewCount,
		w.ID, c.WebtoonID,
	)

	_, err := repository.db.Exec(context, query, chapterID)
	return dberr.Wrap(err, "increment_view_counts")
}

func (repository *PostgresRepository) MarkRead(context context.Context, userID, chapterID string) error {
	t := schema.LibraryChapterRead
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, NOW())
		ON CONFLICT (%s, %s) DO NOTHING
	`,
		t.Table, t.UserID, t.ChapterID, t.ReadAt,
		t.UserID, t.ChapterID,
	)

	_, err := repository.db.Exec(context, query, userID, chapterID)
	return dberr.Wrap(err, "mark_chapter_read")
}
