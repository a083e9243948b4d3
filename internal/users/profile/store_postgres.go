// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

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

func selectColumns() string {
	t := schema.UsersProfile
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Username, t.Email, t.Role, t.Bio, t.AvatarPath, t.CreatedAt, t.UpdatedAt)
}

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.Role, &p.Bio, &p.AvatarPath, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (repository *PostgresRepository) GetProfile(context context.Context, userID string) (*Profile, error) {
	t := schema.UsersProfile
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1
	`, selectColumns(), t.Table, t.ID)

	p, err := scanProfile(repository.db.QueryRow(context, query, userID))
	return p, dberr.Wrap(err, "get_profile")
}

func (repository *PostgresRepository) GetRole(context context.Context, userID string) (string, error) {
	t := schema.UsersProfile
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, t.Role, t.Table, t.ID)

	var role string
	err := repository.db.QueryRow(context, query, userID).Scan(&role)
	return role, dberr.Wrap(err, "get_profile_role")
}

func (repository *PostgresRepository) ListProfiles(context context.Context, query string, limit, offset int) ([]*Profile, int, error) {
	t := schema.UsersProfile

	where := ""
	args := []any{}
	if query != "" {
		where = fmt.Sprintf("WHERE %s ILIKE $1 OR %s ILIKE $1", t.Username, t.Email)
		args = append(args, "%"+query+"%")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, t.Table, where)
	var total int
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_profiles")
	}

	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d
	`, selectColumns(), t.Table, where, t.CreatedAt, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_profiles")
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_profile")
		}
		profiles = append(profiles, p)
	}

	return profiles, total, nil
}

func (repository *PostgresRepository) UpdateProfile(context context.Context, p *Profile) error {
	t := schema.UsersProfile
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`, t.Table, t.Username, t.Bio, t.UpdatedAt, t.ID, t.UpdatedAt)

	err := repository.db.QueryRow(context, query, p.ID, p.Username, p.Bio).Scan(&p.UpdatedAt)
	return dberr.Wrap(err, "update_profile")
}

func (repository *PostgresRepository) SetAvatarPath(context context.Context, userID, path string) error {
	t := schema.UsersProfile
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1
	`, t.Table, t.AvatarPath, t.UpdatedAt, t.ID)

	cmd, err := repository.db.Exec(context, query, userID, path)
	if err != nil {
		return dberr.Wrap(err, "set_avatar_path")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) SetRole(context context.Context, userID, role string) error {
	t := schema.UsersProfile
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1
	`, t.Table, t.Role, t.UpdatedAt, t.ID)

	cmd, err := repository.db.Exec(context, query, userID, role)
	if err != nil {
		return dberr.Wrap(err, "set_role")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) RoleExists(context context.Context, name string) (bool, error) {
	t := schema.UsersRole
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, t.Table, t.Name)

	var exists bool
	if err := repository.db.QueryRow(context, query, name).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "role_exists")
	}
	return exists, nil
}
