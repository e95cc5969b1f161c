package models

import "time"

// Habit represents a recurring practice to track
type Habit struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id,omitempty"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// HabitCompletion records whether a habit was done on a given day.
// (HabitID, Day) is a natural key: at most one record per habit per day.
type HabitCompletion struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	HabitID   string     `json:"habit_id"`
	Day       string     `json:"day"` // YYYY-MM-DD format
	Completed bool       `json:"completed"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
