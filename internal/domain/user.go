package domain

import "time"

// User is an account that can authenticate and submit ratings.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
