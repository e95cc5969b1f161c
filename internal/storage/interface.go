package storage

import (
	"time"

	"github.com/julianstephens/daybook/internal/models"
)

// Provider is the local durable storage collaborator. The in-memory replica
// hydrates from it at process start and writes through on every mutation.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings (singleton)
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Habit completions; (habit_id, day) is unique
	UpsertCompletion(models.HabitCompletion) error
	GetCompletion(habitID, day string) (models.HabitCompletion, error)
	GetCompletionsForHabit(habitID, startDay, endDay string) ([]models.HabitCompletion, error)
	GetAllCompletions() ([]models.HabitCompletion, error)
	DeleteCompletion(id string) error

	// Journal entries
	AddJournalEntry(models.JournalEntry) error
	GetJournalEntry(id string) (models.JournalEntry, error)
	GetJournalEntriesForDay(day string) ([]models.JournalEntry, error)
	GetAllJournalEntries() ([]models.JournalEntry, error)
	UpdateJournalEntry(models.JournalEntry) error
	DeleteJournalEntry(id string) error

	// Focus lines
	UpsertFocusLine(models.FocusLine) error
	GetFocusLinesForDay(day string) ([]models.FocusLine, error)
	GetAllFocusLines() ([]models.FocusLine, error)
	DeleteFocusLine(id string) error

	// Interest areas
	UpsertInterest(models.InterestArea) error
	GetAllInterests() ([]models.InterestArea, error)
	DeleteInterest(id string) error

	// Snapshot exchange with the sync engine. LoadSnapshot reads every watched
	// collection; ReplaceSnapshot overwrites them wholesale (pull semantics).
	LoadSnapshot() (models.Snapshot, error)
	ReplaceSnapshot(models.Snapshot) error

	// Sync watermark
	GetLastSyncedAt() (*time.Time, error)
	SetLastSyncedAt(time.Time) error

	// Utils
	GetConfigPath() string
}
