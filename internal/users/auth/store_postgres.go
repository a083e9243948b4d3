// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/toonhive/internal/platform/database/schema"
	"github.com/taibuivan/toonhive/internal/platform/dberr"
)

// PostgresUserRepository implements [UserRepository] over users.profile.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a new Postgres-backed UserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	t := schema.UsersProfile
	return repository.findBy(context, t.Email, email)
}

func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	t := schema.UsersProfile
	return repository.findBy(context, t.Username, username)
}

func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	t := schema.UsersProfile
	return repository.findBy(context, t.ID, id)
}

// findBy loads the identity columns of a single profile row keyed by one column.
func (repository *PostgresUserRepository) findBy(context context.Context, column, value string) (*User, error) {
	t := schema.UsersProfile
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1
	`, t.ID, t.Username, t.Email, t.PasswordHash, t.Role, t.CreatedAt, t.Table, column)

	user := &User{}
	err := repository.db.QueryRow(context, query, value).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	return user, dberr.Wrap(err, "find_user")
}

func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	t := schema.UsersProfile
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s
	`, t.Table, t.ID, t.Username, t.Email, t.PasswordHash, t.Role, t.CreatedAt, t.UpdatedAt, t.CreatedAt)

	err := repository.db.QueryRow(context, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.CreatedAt)
	return dberr.Wrap(err, "create_user")
}
