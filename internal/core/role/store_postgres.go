// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

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

func (repository *PostgresRepository) ListRoles(context context.Context) ([]*Role, error) {
	t := schema.UsersRole
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s ASC
	`, t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt, t.Table, t.Name)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_roles")
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		r := &Role{}
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_role")
		}
		roles = append(roles, r)
	}

	return roles, nil
}

func (repository *PostgresRepository) GetRole(context context.Context, id string) (*Role, error) {
	t := schema.UsersRole
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1
	`, t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt, t.Table, t.ID)

	r := &Role{}
	err := repository.db.QueryRow(context, query, id).Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	return r, dberr.Wrap(err, "get_role")
}

func (repository *PostgresRepository) CreateRole(context context.Context, r *Role) error {
	t := schema.UsersRole
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING %s, %s
	`, t.Table, t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt, t.CreatedAt, t.UpdatedAt)

	err := repository.db.QueryRow(context, query, r.ID, r.Name, r.Description).Scan(&r.CreatedAt, &r.UpdatedAt)
	return dberr.Wrap(err, "create_role")
}

func (repository *PostgresRepository) UpdateRole(context context.Context, r *Role) error {
	t := schema.UsersRole
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`, t.Table, t.Name, t.Description, t.UpdatedAt, t.ID, t.UpdatedAt)

	err := repository.db.QueryRow(context, query, r.ID, r.Name, r.Description).Scan(&r.UpdatedAt)
	return dberr.Wrap(err, "update_role")
}

func (repository *PostgresRepository) DeleteRole(context context.Context, id string) error {
	t := schema.UsersRole
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_role")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
