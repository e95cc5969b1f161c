package models

import "time"

// SyncStatus is the orchestrator's externally visible state
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncError   SyncStatus = "error"
)

// Snapshot is the full set of watched collections exchanged with the remote
// store. Both push and pull move whole snapshots; there is no per-field merge.
type Snapshot struct {
	Habits      []Habit           `json:"habits"`
	Completions []HabitCompletion `json:"completions"`
	Journal     []JournalEntry    `json:"journal"`
	FocusLines  []FocusLine       `json:"focus_lines"`
	Interests   []InterestArea    `json:"interests"`
	Settings    *Settings         `json:"settings,omitempty"`
}

// SyncState is what the UI layer reads to display sync progress
type SyncState struct {
	UserID       string     `json:"user_id"`
	Status       SyncStatus `json:"status"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	QueuedPushes int        `json:"queued_pushes"`
}
