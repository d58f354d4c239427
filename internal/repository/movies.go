package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmdex/filmdex/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    tmdb_id,
    title,
    overview,
    release_date,
    genre_ids,
    avg_rating,
    created_at,
    updated_at
`

// MovieInsertParams bundles the fields required to insert a mirrored movie.
type MovieInsertParams struct {
	TmdbID      int64
	Title       string
	Overview    string
	ReleaseDate *time.Time
	GenreIDs    []int32
}

// MovieListFilters encapsulates search and pagination options. All filters
// are optional and AND-combined.
type MovieListFilters struct {
	Search  *string
	GenreID *int32
	Year    *int
	Page    int
	Limit   int
}

// Count returns the number of mirrored movies.
func (r *MoviesRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return count, nil
}

// BulkInsert writes a page of movies, skipping records whose tmdb_id already
// exists. It returns the number of rows actually inserted. Any error other
// than a duplicate aborts the batch.
func (r *MoviesRepository) BulkInsert(ctx context.Context, params []MovieInsertParams) (int, error) {
	if len(params) == 0 {
		return 0, nil
	}

	const query = `
        INSERT INTO movies (tmdb_id, title, overview, release_date, genre_ids)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (tmdb_id) DO NOTHING
    `

	batch := &pgx.Batch{}
	for _, p := range params {
		batch.Queue(query, p.TmdbID, p.Title, p.Overview, p.ReleaseDate, p.GenreIDs)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range params {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("bulk insert movies: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// GetByTmdbID fetches a movie by its external catalog identifier.
func (r *MoviesRepository) GetByTmdbID(ctx context.Context, tmdbID int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE tmdb_id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, tmdbID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns movies that match the provided filters, ordered by tmdb_id for
// stable pagination. Page and Limit below 1 fall back to 1 and 10.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) ([]domain.Movie, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = 10
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		q := "%" + strings.TrimSpace(*filters.Search) + "%"
		p1 := arg(q)
		p2 := arg(q)
		where = append(where, fmt.Sprintf("(title ILIKE %s OR overview ILIKE %s)", p1, p2))
	}
	if filters.GenreID != nil {
		where = append(where, fmt.Sprintf("%s = ANY(genre_ids)", arg(*filters.GenreID)))
	}
	if filters.Year != nil {
		start := time.Date(*filters.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(*filters.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		where = append(where, fmt.Sprintf("release_date >= %s", arg(start)))
		where = append(where, fmt.Sprintf("release_date <= %s", arg(end)))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies")

	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY tmdb_id")
	queryBuilder.WriteString(fmt.Sprintf(" OFFSET %d LIMIT %d", (filters.Page-1)*filters.Limit, filters.Limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// RecomputeAvgRating refreshes a movie's cached mean from its full rating set
// in a single statement, so the read and the write cannot interleave with a
// concurrent submission. Returns the stored mean (0 when no ratings exist).
func (r *MoviesRepository) RecomputeAvgRating(ctx context.Context, movieID string) (float64, error) {
	const query = `
        UPDATE movies
        SET avg_rating = COALESCE((SELECT AVG(rating)::float8 FROM ratings WHERE movie_id = $1), 0),
            updated_at = now()
        WHERE id = $1
        RETURNING avg_rating
    `

	var avg float64
	err := r.pool.QueryRow(ctx, query, movieID).Scan(&avg)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("recompute avg rating: %w", err)
	}
	return avg, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie       domain.Movie
		releaseDate *time.Time
		genreIDs    []int32
	)

	err := row.Scan(
		&movie.ID,
		&movie.TmdbID,
		&movie.Title,
		&movie.Overview,
		&releaseDate,
		&genreIDs,
		&movie.AvgRating,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	movie.ReleaseDate = releaseDate
	movie.GenreIDs = genreIDs
	return movie, nil
}
