package domain

import "time"

// Todo is the domain entity for a to-do item. UserID is the owning account
// and never changes after creation.
type Todo struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	IsDone      bool
	DueAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
