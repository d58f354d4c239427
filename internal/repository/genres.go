package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmdex/filmdex/internal/domain"
)

// GenresRepository provides persistence helpers for the genre taxonomy.
type GenresRepository struct {
	pool *pgxpool.Pool
}

// GenreInsertParams bundles the fields required to seed a genre.
type GenreInsertParams struct {
	TmdbID int32
	Name   string
}

// Count returns the number of seeded genres.
func (r *GenresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM genres`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count genres: %w", err)
	}
	return count, nil
}

// BulkInsert seeds the taxonomy, skipping entries whose tmdb_id already
// exists. Returns the number of rows actually inserted.
func (r *GenresRepository) BulkInsert(ctx context.Context, params []GenreInsertParams) (int, error) {
	if len(params) == 0 {
		return 0, nil
	}

	const query = `
        INSERT INTO genres (tmdb_id, name)
        VALUES ($1,$2)
        ON CONFLICT (tmdb_id) DO NOTHING
    `

	batch := &pgx.Batch{}
	for _, p := range params {
		batch.Queue(query, p.TmdbID, p.Name)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range params {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("bulk insert genres: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// List returns all genres ordered by their catalog identifier.
func (r *GenresRepository) List(ctx context.Context) ([]domain.Genre, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, tmdb_id, name, created_at FROM genres ORDER BY tmdb_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := make([]domain.Genre, 0)
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.TmdbID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}
