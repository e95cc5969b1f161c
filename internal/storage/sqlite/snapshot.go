package sqlite

import (
	"fmt"

	"github.com/julianstephens/daybook/internal/models"
)

// LoadSnapshot reads every watched collection into a single snapshot.
// Soft-deleted rows are included so that deletions replicate on push.
func (s *Store) LoadSnapshot() (models.Snapshot, error) {
	var snap models.Snapshot

	habits, err := s.GetAllHabits(true, true)
	if err != nil {
		return snap, fmt.Errorf("failed to load habits: %w", err)
	}
	snap.Habits = habits

	completions, err := s.getAllCompletionsIncludingDeleted()
	if err != nil {
		return snap, fmt.Errorf("failed to load completions: %w", err)
	}
	snap.Completions = completions

	journal, err := s.queryJournal(`
		SELECT id, day, title, body, created_at, updated_at, deleted_at
		FROM journal_entries ORDER BY day DESC, created_at`)
	if err != nil {
		return snap, fmt.Errorf("failed to load journal entries: %w", err)
	}
	snap.Journal = journal

	focus, err := s.queryFocus(`
		SELECT id, day, text, done, created_at, updated_at, deleted_at
		FROM focus_lines ORDER BY day DESC, created_at`)
	if err != nil {
		return snap, fmt.Errorf("failed to load focus lines: %w", err)
	}
	snap.FocusLines = focus

	interests, err := s.getAllInterestsIncludingDeleted()
	if err != nil {
		return snap, fmt.Errorf("failed to load interest areas: %w", err)
	}
	snap.Interests = interests

	settings, err := s.GetSettings()
	if err != nil {
		return snap, fmt.Errorf("failed to load settings: %w", err)
	}
	snap.Settings = &settings

	return snap, nil
}

// ReplaceSnapshot overwrites every watched collection with the given snapshot
// inside a single transaction. This is pull semantics: whole-collection
// replacement, no field-level merge.
func (s *Store) ReplaceSnapshot(snap models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"habits", "habit_completions", "journal_entries", "focus_lines", "interest_areas"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, h := range snap.Habits {
		if _, err := tx.Exec(`
			INSERT INTO habits (id, name, icon, created_at, updated_at, archived_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Name, h.Icon, timeString(h.CreatedAt), timeString(h.UpdatedAt),
			nullTimeString(h.ArchivedAt), nullTimeString(h.DeletedAt)); err != nil {
			return fmt.Errorf("failed to write habit %s: %w", h.ID, err)
		}
	}

	for _, c := range snap.Completions {
		if _, err := tx.Exec(`
			INSERT INTO habit_completions (id, habit_id, day, completed, note, created_at, updated_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.HabitID, c.Day, c.Completed, c.Note,
			timeString(c.CreatedAt), timeString(c.UpdatedAt), nullTimeString(c.DeletedAt)); err != nil {
			return fmt.Errorf("failed to write completion %s: %w", c.ID, err)
		}
	}

	for _, e := range snap.Journal {
		if _, err := tx.Exec(`
			INSERT INTO journal_entries (id, day, title, body, created_at, updated_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Day, e.Title, e.Body,
			timeString(e.CreatedAt), timeString(e.UpdatedAt), nullTimeString(e.DeletedAt)); err != nil {
			return fmt.Errorf("failed to write journal entry %s: %w", e.ID, err)
		}
	}

	for _, f := range snap.FocusLines {
		if _, err := tx.Exec(`
			INSERT INTO focus_lines (id, day, text, done, created_at, updated_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.Day, f.Text, f.Done,
			timeString(f.CreatedAt), timeString(f.UpdatedAt), nullTimeString(f.DeletedAt)); err != nil {
			return fmt.Errorf("failed to write focus line %s: %w", f.ID, err)
		}
	}

	for _, a := range snap.Interests {
		if _, err := tx.Exec(`
			INSERT INTO interest_areas (id, name, color, sort_order, created_at, updated_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Color, a.SortOrder,
			timeString(a.CreatedAt), timeString(a.UpdatedAt), nullTimeString(a.DeletedAt)); err != nil {
			return fmt.Errorf("failed to write interest area %s: %w", a.ID, err)
		}
	}

	// Settings travel with the snapshot but keep the local sync account:
	// replacing sync_user_id from remote data could silently disable sync.
	if snap.Settings != nil {
		local, err := s.GetSettings()
		if err != nil {
			return fmt.Errorf("failed to read local settings: %w", err)
		}
		merged := *snap.Settings
		merged.SyncUserID = local.SyncUserID
		merged.SyncServerURL = local.SyncServerURL
		if _, err := tx.Exec(`
			INSERT INTO settings (id, timezone, week_start, rate_window_days, sync_user_id, sync_server_url)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				timezone = excluded.timezone,
				week_start = excluded.week_start,
				rate_window_days = excluded.rate_window_days,
				sync_user_id = excluded.sync_user_id,
				sync_server_url = excluded.sync_server_url`,
			merged.Timezone, merged.WeekStart, merged.RateWindowDays,
			merged.SyncUserID, merged.SyncServerURL); err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) getAllCompletionsIncludingDeleted() ([]models.HabitCompletion, error) {
	rows, err := s.db.Query(`
		SELECT id, habit_id, day, completed, note, created_at, updated_at, deleted_at
		FROM habit_completions ORDER BY day DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HabitCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, c)
	}

	return entries, rows.Err()
}

func (s *Store) getAllInterestsIncludingDeleted() ([]models.InterestArea, error) {
	rows, err := s.db.Query(`
		SELECT id, name, color, sort_order, created_at, updated_at, deleted_at
		FROM interest_areas ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []models.InterestArea
	for rows.Next() {
		a, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}

	return areas, rows.Err()
}
