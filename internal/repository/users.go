package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmdex/filmdex/internal/domain"
)

// UsersRepository provides persistence helpers for user accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

// Count returns the number of registered users.
func (r *UsersRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// GetByUsername fetches a user by their unique username.
func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	var user domain.User
	err := r.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// CreateIfAbsent inserts a user unless the username is already taken, and
// reports whether a row was written.
func (r *UsersRepository) CreateIfAbsent(ctx context.Context, username, passwordHash string) (bool, error) {
	const query = `
        INSERT INTO users (username, password_hash)
        VALUES ($1,$2)
        ON CONFLICT (username) DO NOTHING
    `

	tag, err := r.pool.Exec(ctx, query, username, passwordHash)
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
