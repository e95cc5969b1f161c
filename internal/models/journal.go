package models

import "time"

// JournalEntry is a dated free-form entry
type JournalEntry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	Day       string     `json:"day"` // YYYY-MM-DD format
	Title     string     `json:"title,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// FocusLine is a short intention for a day, shown at the top of the dashboard
type FocusLine struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	Day       string     `json:"day"` // YYYY-MM-DD format
	Text      string     `json:"text"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// InterestArea groups habits and journal entries under a theme
type InterestArea struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	Name      string     `json:"name"`
	Color     string     `json:"color,omitempty"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
