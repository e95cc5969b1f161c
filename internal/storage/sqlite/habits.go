package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/daybook/internal/models"
)

func (s *Store) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var h models.Habit
	var createdAt, updatedAt string
	var archivedAt, deletedAt sql.NullString

	if err := row.Scan(&h.ID, &h.Name, &h.Icon, &createdAt, &updatedAt, &archivedAt, &deletedAt); err != nil {
		return models.Habit{}, err
	}

	var err error
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Habit{}, err
	}
	if h.ArchivedAt, err = parseNullTime("archived_at", archivedAt); err != nil {
		return models.Habit{}, err
	}
	if h.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.Habit{}, err
	}

	return h, nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT id, name, icon, created_at, updated_at, archived_at, deleted_at
		FROM habits WHERE id = ? AND deleted_at IS NULL`, id)
	return scanHabit(row)
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT id, name, icon, created_at, updated_at, archived_at, deleted_at
		FROM habits WHERE name = ? AND deleted_at IS NULL`, name)
	return scanHabit(row)
}

func (s *Store) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT id, name, icon, created_at, updated_at, archived_at, deleted_at FROM habits WHERE 1=1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	_, err := s.db.Exec(`
		INSERT INTO habits (id, name, icon, created_at, updated_at, archived_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			updated_at = excluded.updated_at,
			archived_at = excluded.archived_at,
			deleted_at = excluded.deleted_at`,
		habit.ID, habit.Name, habit.Icon,
		timeString(habit.CreatedAt), timeString(habit.UpdatedAt),
		nullTimeString(habit.ArchivedAt), nullTimeString(habit.DeletedAt))

	return err
}

func (s *Store) ArchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL AND archived_at IS NULL`,
		timeString(time.Now()), timeString(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRows(result, "habit not found or already archived/deleted")
}

func (s *Store) DeleteHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		timeString(time.Now()), timeString(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRows(result, "habit not found or already deleted")
}

func (s *Store) RestoreHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`,
		timeString(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRows(result, "habit not found or not deleted")
}

func requireRows(result sql.Result, msg string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

// Habit completions

func scanCompletion(row interface{ Scan(...any) error }) (models.HabitCompletion, error) {
	var c models.HabitCompletion
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&c.ID, &c.HabitID, &c.Day, &c.Completed, &c.Note, &createdAt, &updatedAt, &deletedAt); err != nil {
		return models.HabitCompletion{}, err
	}

	var err error
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.HabitCompletion{}, err
	}
	if c.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.HabitCompletion{}, err
	}
	if c.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.HabitCompletion{}, err
	}

	return c, nil
}

func (s *Store) UpsertCompletion(entry models.HabitCompletion) error {
	_, err := s.db.Exec(`
		INSERT INTO habit_completions (id, habit_id, day, completed, note, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			note = excluded.note,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		entry.ID, entry.HabitID, entry.Day, entry.Completed, entry.Note,
		timeString(entry.CreatedAt), timeString(entry.UpdatedAt), nullTimeString(entry.DeletedAt))

	return err
}

func (s *Store) GetCompletion(habitID, day string) (models.HabitCompletion, error) {
	row := s.db.QueryRow(`
		SELECT id, habit_id, day, completed, note, created_at, updated_at, deleted_at
		FROM habit_completions WHERE habit_id = ? AND day = ? AND deleted_at IS NULL`,
		habitID, day)
	return scanCompletion(row)
}

func (s *Store) GetCompletionsForHabit(habitID, startDay, endDay string) ([]models.HabitCompletion, error) {
	rows, err := s.db.Query(`
		SELECT id, habit_id, day, completed, note, created_at, updated_at, deleted_at
		FROM habit_completions
		WHERE habit_id = ? AND day >= ? AND day <= ? AND deleted_at IS NULL
		ORDER BY day DESC`, habitID, startDay, endDay)
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

func (s *Store) GetAllCompletions() ([]models.HabitCompletion, error) {
	rows, err := s.db.Query(`
		SELECT id, habit_id, day, completed, note, created_at, updated_at, deleted_at
		FROM habit_completions WHERE deleted_at IS NULL
		ORDER BY day DESC`)
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

func (s *Store) DeleteCompletion(id string) error {
	result, err := s.db.Exec(`
		UPDATE habit_completions SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		timeString(time.Now()), timeString(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRows(result, "habit completion not found or already deleted")
}
