package domain

import "time"

// Movie is the canonical catalog entity mirrored from TMDB.
type Movie struct {
	ID          string
	TmdbID      int64
	Title       string
	Overview    string
	ReleaseDate *time.Time
	GenreIDs    []int32
	AvgRating   float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Genre is one entry of the TMDB genre taxonomy. Immutable after seeding.
type Genre struct {
	ID        string
	TmdbID    int32
	Name      string
	CreatedAt time.Time
}
