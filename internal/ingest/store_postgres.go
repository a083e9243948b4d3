// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/toonhive/internal/platform/database/schema"
	"github.com/taibuivan/toonhive/internal/platform/dberr"
	"github.com/taibuivan/toonhive/pkg/uuid"
)

// lockReleaseTimeout bounds the advisory unlock on an already-abandoned item.
const lockReleaseTimeout = 5 * time.Second

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (store *PostgresStore) GetWebtoonTitle(context context.Context, webtoonID string) (string, error) {
	t := schema.CoreWebtoon
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, t.Title, t.Table, t.ID)

	var title string
	err := store.db.QueryRow(context, query, webtoonID).Scan(&title)
	return title, dberr.Wrap(err, "get_webtoon_title")
}

// LockChapterSlot pins one pool connection and takes a session-scoped
// advisory lock keyed by the slot. A transaction-scoped lock would release
// at the upsert's commit, before the page purge and re-insert run; the
// session lock stays held until release, covering the whole chapter item.
func (store *PostgresStore) LockChapterSlot(context_ context.Context, webtoonID string, number float64) (func(), error) {
	connection, err := store.db.Acquire(context_)
	if err != nil {
		return nil, dberr.Wrap(err, "acquire_lock_connection")
	}

	lockKey := chapterLockKey(webtoonID, number)
	if _, err := connection.Exec(context_, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		connection.Release()
		return nil, dberr.Wrap(err, "lock_chapter_slot")
	}

	release := func() {
		detached, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()

		if _, err := connection.Exec(detached, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, lockKey); err != nil {
			// Closing the session drops every advisory lock it holds.
			connection.Conn().Close(detached)
		}
		connection.Release()
	}
	return release, nil
}

func chapterLockKey(webtoonID string, number float64) string {
	return fmt.Sprintf("%s:%g", webtoonID, number)
}

// UpsertChapter reuses the existing row for (webtoonID, number) when there is
// one, preserving its id and view count. Serialization against concurrent
// publishers of the same pair is the caller's job via LockChapterSlot.
func (store *PostgresStore) UpsertChapter(context context.Context, webtoonID string, number float64, requiredRoles []string) (string, *string, error) {
	t := schema.CoreChapter

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = NOW()
		RETURNING %s, %s
	`,
		t.Table, t.ID, t.WebtoonID, t.Number, t.RequiredRoles, t.ViewCount, t.CreatedAt, t.UpdatedAt,
		t.WebtoonID, t.Number,
		t.RequiredRoles, t.RequiredRoles, t.UpdatedAt,
		t.ID, t.ThumbnailPath,
	)

	var chapterID string
	var previousThumbnail *string
	if err := store.db.QueryRow(context, query, uuid.New(), webtoonID, number, requiredRoles).Scan(&chapterID, &previousThumbnail); err != nil {
		return "", nil, dberr.Wrap(err, "upsert_chapter")
	}

	return chapterID, previousThumbnail, nil
}

func (store *PostgresStore) SetThumbnailPath(context context.Context, chapterID string, path *string) error {
	t := schema.CoreChapter
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		t.Table, t.ThumbnailPath, t.UpdatedAt, t.ID,
	)

	_, err := store.db.Exec(context, query, chapterID, path)
	return dberr.Wrap(err, "set_thumbnail_path")
}

func (store *PostgresStore) DeletePageRows(context context.Context, chapterID string) error {
	t := schema.CorePage
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.ChapterID)

	_, err := store.db.Exec(context, query, chapterID)
	return dberr.Wrap(err, "delete_page_rows")
}

func (store *PostgresStore) InsertPageRows(context context.Context, rows []PageRow) error {
	if len(rows) == 0 {
		return nil
	}

	t := schema.CorePage
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
		t.Table, t.ID, t.ChapterID, t.PageNumber, t.AssetPath,
	)

	pageBatch := &pgx.Batch{}
	for _, row := range rows {
		pageBatch.Queue(query, row.ID, row.ChapterID, row.Number, row.AssetPath)
	}

	results := store.db.SendBatch(context, pageBatch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "insert_page_rows")
		}
	}

	return nil
}
