// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
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

func (repository *PostgresRepository) ListFavoriteUserIDs(context context.Context, webtoonID string) ([]string, error) {
	f := schema.LibraryFavorite
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, f.UserID, f.Table, f.WebtoonID)

	rows, err := repository.db.Query(context, query, webtoonID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_favorite_users")
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, dberr.Wrap(err, "scan_favorite_user")
		}
		userIDs = append(userIDs, userID)
	}

	return userIDs, nil
}

func (repository *PostgresRepository) InsertNotifications(context context.Context, notifications []*Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	t := schema.SystemNotification
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, false, NOW())
	`, t.Table, t.ID, t.UserID, t.WebtoonID, t.ChapterID, t.Message, t.IsRead, t.CreatedAt)

	insertBatch := &pgx.Batch{}
	for _, notification := range notifications {
		insertBatch.Queue(query,
			notification.ID, notification.UserID, notification.WebtoonID,
			notification.ChapterID, notification.Message,
		)
	}

	results := repository.db.SendBatch(context, insertBatch)
	defer results.Close()

	for range notifications {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "insert_notifications")
		}
	}

	return nil
}

func (repository *PostgresRepository) ListNotifications(context context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	t := schema.SystemNotification

	filter := fmt.Sprintf(`WHERE %s = $1`, t.UserID)
	if unreadOnly {
		filter += fmt.Sprintf(` AND %s = false`, t.IsRead)
	}

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s %s`, t.Table, filter)

	var total int
	if err := repository.db.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_notifications")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s %s
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3
	`,
		t.ID, t.UserID, t.WebtoonID, t.ChapterID, t.Message, t.IsRead, t.CreatedAt,
		t.Table, filter, t.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_notifications")
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.WebtoonID, &n.ChapterID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_notification")
		}
		notifications = append(notifications, n)
	}

	return notifications, total, nil
}

func (repository *PostgresRepository) CountUnread(context context.Context, userID string) (int64, error) {
	t := schema.SystemNotification
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1 AND %s = false`,
		t.Table, t.UserID, t.IsRead,
	)

	var count int64
	err := repository.db.QueryRow(context, query, userID).Scan(&count)
	return count, dberr.Wrap(err, "count_unread_notifications")
}

func (repository *PostgresRepository) MarkRead(context context.Context, userID, notificationID string) error {
	t := schema.SystemNotification
	query := fmt.Sprintf(`UPDATE %s SET %s = true WHERE %s = $1 AND %s = $2`,
		t.Table, t.IsRead, t.ID, t.UserID,
	)

	cmd, err := repository.db.Exec(context, query, notificationID, userID)
	if err != nil {
		return dberr.Wrap(err, "mark_notification_read")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) MarkAllRead(context context.Context, userID string) error {
	t := schema.SystemNotification
	query := fmt.Sprintf(`UPDATE %s SET %s = true WHERE %s = $1 AND %s = false`,
		t.Table, t.IsRead, t.UserID, t.IsRead,
	)

	_, err := repository.db.Exec(context, query, userID)
	return dberr.Wrap(err, "mark_all_notifications_read")
}
