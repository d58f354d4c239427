package domain

import "time"

// Rating represents a single user's score for a movie. At most one rating
// exists per (user, movie) pair; resubmission overwrites in place.
type Rating struct {
	ID        string
	UserID    string
	MovieID   string
	Score     int32
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingSummary is the projection embedded in movie responses.
type RatingSummary struct {
	Score   int32
	Comment *string
}

// RatingDetail is a rating joined with the owning user's username.
type RatingDetail struct {
	Rating
	Username string
}
