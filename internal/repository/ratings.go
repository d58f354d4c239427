package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmdex/filmdex/internal/domain"
)

// RatingsRepository provides helpers for movie ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// RatingUpsertParams captures the payload required to upsert a rating.
type RatingUpsertParams struct {
	UserID  string
	MovieID string
	Score   int32
	Comment *string
}

// Upsert inserts or updates a rating and indicates whether it was newly
// created. The unique index on (user_id, movie_id) makes the write atomic, so
// two racing submissions for the same pair cannot create two rows.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	const query = `
        INSERT INTO ratings (user_id, movie_id, rating, comment)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id, movie_id)
        DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()
        RETURNING id, user_id, movie_id, rating, comment, created_at, updated_at, (xmax = 0) AS inserted
    `

	var rating domain.Rating
	var inserted bool
	err := r.pool.QueryRow(ctx, query, params.UserID, params.MovieID, params.Score, params.Comment).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Score,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&inserted,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, false, ErrNotFound
		}
		return domain.Rating{}, false, err
	}

	return rating, inserted, nil
}

// GetByID retrieves a rating with the owning user's username attached. The
// id column is compared as text so a malformed identifier reads as not-found
// rather than a uuid cast error.
func (r *RatingsRepository) GetByID(ctx context.Context, id string) (domain.RatingDetail, error) {
	const query = `
        SELECT r.id, r.user_id, r.movie_id, r.rating, r.comment, r.created_at, r.updated_at, u.username
        FROM ratings r
        JOIN users u ON u.id = r.user_id
        WHERE r.id::text = $1
    `

	var detail domain.RatingDetail
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&detail.ID,
		&detail.UserID,
		&detail.MovieID,
		&detail.Score,
		&detail.Comment,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.Username,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.RatingDetail{}, ErrNotFound
		}
		return domain.RatingDetail{}, err
	}
	return detail, nil
}

// ForMovies returns the rating summaries for a set of movies in one query,
// keyed by movie id.
func (r *RatingsRepository) ForMovies(ctx context.Context, movieIDs []string) (map[string][]domain.RatingSummary, error) {
	summaries := make(map[string][]domain.RatingSummary, len(movieIDs))
	if len(movieIDs) == 0 {
		return summaries, nil
	}

	const query = `
        SELECT movie_id, rating, comment
        FROM ratings
        WHERE movie_id = ANY($1)
        ORDER BY created_at
    `

	rows, err := r.pool.Query(ctx, query, movieIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var movieID string
		var summary domain.RatingSummary
		if err := rows.Scan(&movieID, &summary.Score, &summary.Comment); err != nil {
			return nil, err
		}
		summaries[movieID] = append(summaries[movieID], summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
