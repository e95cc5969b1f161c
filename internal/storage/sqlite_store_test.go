package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/daybook/internal/models"
)

func setupTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testHabit(name string) models.Habit {
	now := time.Now()
	return models.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestHabitCRUD(t *testing.T) {
	store := setupTestSQLiteStore(t)

	habit := testHabit("Read")
	habit.Icon = "📚"
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	retrieved, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if retrieved.Name != "Read" {
		t.Errorf("expected name %q, got %q", "Read", retrieved.Name)
	}
	if retrieved.Icon != "📚" {
		t.Errorf("expected icon to round-trip, got %q", retrieved.Icon)
	}

	byName, err := store.GetHabitByName("Read")
	if err != nil {
		t.Fatalf("failed to get habit by name: %v", err)
	}
	if byName.ID != habit.ID {
		t.Errorf("expected ID %s, got %s", habit.ID, byName.ID)
	}

	habit.Name = "Read more"
	habit.UpdatedAt = time.Now()
	if err := store.UpdateHabit(habit); err != nil {
		t.Fatalf("failed to update habit: %v", err)
	}
	updated, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("failed to get updated habit: %v", err)
	}
	if updated.Name != "Read more" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
}

func TestHabitSoftDeleteAndRestore(t *testing.T) {
	store := setupTestSQLiteStore(t)

	habit := testHabit("Run")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	if err := store.DeleteHabit(habit.ID); err != nil {
		t.Fatalf("failed to delete habit: %v", err)
	}

	if _, err := store.GetHabit(habit.ID); err == nil {
		t.Error("expected deleted habit to be invisible to GetHabit")
	}

	// The row survives; GetAllHabits with includeDeleted sees it.
	all, err := store.GetAllHabits(true, true)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(all) != 1 || all[0].DeletedAt == nil {
		t.Fatalf("expected 1 soft-deleted habit, got %+v", all)
	}

	if err := store.DeleteHabit(habit.ID); err == nil {
		t.Error("expected double delete to fail")
	}

	if err := store.RestoreHabit(habit.ID); err != nil {
		t.Fatalf("failed to restore habit: %v", err)
	}
	restored, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("failed to get restored habit: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("expected deleted_at to be cleared after restore")
	}
}

func TestHabitArchive(t *testing.T) {
	store := setupTestSQLiteStore(t)

	habit := testHabit("Meditate")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	if err := store.ArchiveHabit(habit.ID); err != nil {
		t.Fatalf("failed to archive habit: %v", err)
	}

	active, err := store.GetAllHabits(false, false)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected archived habit to be excluded, got %d habits", len(active))
	}

	withArchived, err := store.GetAllHabits(true, false)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(withArchived) != 1 || withArchived[0].ArchivedAt == nil {
		t.Errorf("expected 1 archived habit, got %+v", withArchived)
	}

	if err := store.ArchiveHabit(habit.ID); err == nil {
		t.Error("expected double archive to fail")
	}
}

func TestCompletionNaturalKeyUpsert(t *testing.T) {
	store := setupTestSQLiteStore(t)

	habit := testHabit("Stretch")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	now := time.Now()
	first := models.HabitCompletion{
		ID:        uuid.New().String(),
		HabitID:   habit.ID,
		Day:       "2026-08-23",
		Completed: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.UpsertCompletion(first); err != nil {
		t.Fatalf("failed to upsert completion: %v", err)
	}

	// Same (habit_id, day) with a different ID must update in place,
	// never create a second row.
	second := first
	second.ID = uuid.New().String()
	second.Completed = false
	second.Note = "skipped, travel day"
	second.UpdatedAt = now.Add(time.Minute)
	if err := store.UpsertCompletion(second); err != nil {
		t.Fatalf("failed to upsert duplicate day: %v", err)
	}

	all, err := store.GetAllCompletions()
	if err != nil {
		t.Fatalf("failed to list completions: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 completion for (habit, day), got %d", len(all))
	}
	if all[0].Completed {
		t.Error("expected completed=false after upsert")
	}
	if all[0].Note != "skipped, travel day" {
		t.Errorf("expected note to be updated, got %q", all[0].Note)
	}
	if all[0].ID != first.ID {
		t.Errorf("expected original row ID %s to survive, got %s", first.ID, all[0].ID)
	}
}

func TestCompletionRangeQuery(t *testing.T) {
	store := setupTestSQLiteStore(t)

	habit := testHabit("Write")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	now := time.Now()
	for _, day := range []string{"2026-08-20", "2026-08-21", "2026-08-23"} {
		entry := models.HabitCompletion{
			ID:        uuid.New().String(),
			HabitID:   habit.ID,
			Day:       day,
			Completed: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.UpsertCompletion(entry); err != nil {
			t.Fatalf("failed to upsert completion for %s: %v", day, err)
		}
	}

	entries, err := store.GetCompletionsForHabit(habit.ID, "2026-08-21", "2026-08-23")
	if err != nil {
		t.Fatalf("failed to query range: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 completions in range, got %d", len(entries))
	}
}

func TestSettingsSingleton(t *testing.T) {
	store := setupTestSQLiteStore(t)

	// Init seeds defaults
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if settings.Timezone == "" {
		t.Error("expected default timezone to be seeded")
	}

	settings.Timezone = "America/New_York"
	settings.SyncUserID = "u1"
	settings.SyncServerURL = "http://localhost:8787"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	reloaded, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to reload settings: %v", err)
	}
	if reloaded.Timezone != "America/New_York" {
		t.Errorf("expected timezone to persist, got %q", reloaded.Timezone)
	}
	if !reloaded.SyncEnabled() {
		t.Error("expected sync to be enabled after setting user ID")
	}
}

func TestSyncWatermark(t *testing.T) {
	store := setupTestSQLiteStore(t)

	watermark, err := store.GetLastSyncedAt()
	if err != nil {
		t.Fatalf("failed to get watermark: %v", err)
	}
	if watermark != nil {
		t.Errorf("expected nil watermark on fresh database, got %v", watermark)
	}

	stamp := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	if err := store.SetLastSyncedAt(stamp); err != nil {
		t.Fatalf("failed to set watermark: %v", err)
	}

	watermark, err = store.GetLastSyncedAt()
	if err != nil {
		t.Fatalf("failed to get watermark: %v", err)
	}
	if watermark == nil || !watermark.Equal(stamp) {
		t.Errorf("expected watermark %v, got %v", stamp, watermark)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := setupTestSQLiteStore(t)

	habit := testHabit("Read")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	deleted := testHabit("Old habit")
	if err := store.AddHabit(deleted); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	if err := store.DeleteHabit(deleted.ID); err != nil {
		t.Fatalf("failed to delete habit: %v", err)
	}

	now := time.Now()
	entry := models.JournalEntry{
		ID:        uuid.New().String(),
		Day:       "2026-08-23",
		Body:      "Quiet day.",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.AddJournalEntry(entry); err != nil {
		t.Fatalf("failed to add journal entry: %v", err)
	}

	snap, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	// Soft-deleted rows must travel in the snapshot so deletions replicate.
	if len(snap.Habits) != 2 {
		t.Errorf("expected 2 habits in snapshot (including deleted), got %d", len(snap.Habits))
	}
	if len(snap.Journal) != 1 {
		t.Errorf("expected 1 journal entry in snapshot, got %d", len(snap.Journal))
	}
	if snap.Settings == nil {
		t.Fatal("expected settings in snapshot")
	}
}

func TestReplaceSnapshotKeepsSyncAccount(t *testing.T) {
	store := setupTestSQLiteStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	settings.SyncUserID = "u1"
	settings.SyncServerURL = "http://localhost:8787"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	local := testHabit("Local only")
	if err := store.AddHabit(local); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	remote := testHabit("From server")
	incoming := models.Snapshot{
		Habits: []models.Habit{remote},
		// Remote settings carry no sync account; a pull must not disable sync.
		Settings: &models.Settings{Timezone: "UTC", WeekStart: "sunday", RateWindowDays: 30},
	}

	if err := store.ReplaceSnapshot(incoming); err != nil {
		t.Fatalf("failed to replace snapshot: %v", err)
	}

	habits, err := store.GetAllHabits(true, true)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(habits) != 1 || habits[0].ID != remote.ID {
		t.Errorf("expected local collections to be replaced wholesale, got %+v", habits)
	}

	merged, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if merged.Timezone != "UTC" || merged.RateWindowDays != 30 {
		t.Errorf("expected remote settings fields to apply, got %+v", merged)
	}
	if merged.SyncUserID != "u1" || merged.SyncServerURL != "http://localhost:8787" {
		t.Errorf("expected local sync account to survive a pull, got %+v", merged)
	}
}

func TestFocusLinesForDay(t *testing.T) {
	store := setupTestSQLiteStore(t)

	now := time.Now()
	for _, day := range []string{"2026-08-22", "2026-08-23"} {
		line := models.FocusLine{
			ID:        uuid.New().String(),
			Day:       day,
			Text:      "Ship the draft",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.UpsertFocusLine(line); err != nil {
			t.Fatalf("failed to upsert focus line: %v", err)
		}
	}

	lines, err := store.GetFocusLinesForDay("2026-08-23")
	if err != nil {
		t.Fatalf("failed to get focus lines: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("expected 1 focus line for the day, got %d", len(lines))
	}
}

func TestExpandPath(t *testing.T) {
	if got := ExpandPath("/tmp/daybook.db"); got != "/tmp/daybook.db" {
		t.Errorf("absolute path must pass through, got %q", got)
	}
	if got := ExpandPath("~/daybook.db"); got == "~/daybook.db" {
		t.Errorf("expected ~/ to be expanded, got %q", got)
	}
}
