package domain

import "time"

// User is the domain entity for a registered account. PasswordHash never
// leaves the repo/service boundary.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
