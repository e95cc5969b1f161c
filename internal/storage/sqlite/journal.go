package sqlite

import (
	"database/sql"
	"time"

	"github.com/julianstephens/daybook/internal/models"
)

func scanJournalEntry(row interface{ Scan(...any) error }) (models.JournalEntry, error) {
	var e models.JournalEntry
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&e.ID, &e.Day, &e.Title, &e.Body, &createdAt, &updatedAt, &deletedAt); err != nil {
		return models.JournalEntry{}, err
	}

	var err error
	if e.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.JournalEntry{}, err
	}
	if e.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.JournalEntry{}, err
	}
	if e.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.JournalEntry{}, err
	}

	return e, nil
}

func (s *Store) AddJournalEntry(entry models.JournalEntry) error {
	return s.UpdateJournalEntry(entry)
}

func (s *Store) UpdateJournalEntry(entry models.JournalEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO journal_entries (id, day, title, body, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day = excluded.day,
			title = excluded.title,
			body = excluded.body,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		entry.ID, entry.Day, entry.Title, entry.Body,
		timeString(entry.CreatedAt), timeString(entry.UpdatedAt), nullTimeString(entry.DeletedAt))

	return err
}

func (s *Store) GetJournalEntry(id string) (models.JournalEntry, error) {
	row := s.db.QueryRow(`
		SELECT id, day, title, body, created_at, updated_at, deleted_at
		FROM journal_entries WHERE id = ? AND deleted_at IS NULL`, id)
	return scanJournalEntry(row)
}

func (s *Store) GetJournalEntriesForDay(day string) ([]models.JournalEntry, error) {
	return s.queryJournal(`
		SELECT id, day, title, body, created_at, updated_at, deleted_at
		FROM journal_entries WHERE day = ? AND deleted_at IS NULL
		ORDER BY created_at`, day)
}

func (s *Store) GetAllJournalEntries() ([]models.JournalEntry, error) {
	return s.queryJournal(`
		SELECT id, day, title, body, created_at, updated_at, deleted_at
		FROM journal_entries WHERE deleted_at IS NULL
		ORDER BY day DESC, created_at`)
}

func (s *Store) queryJournal(query string, args ...any) ([]models.JournalEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Store) DeleteJournalEntry(id string) error {
	result, err := s.db.Exec(`
		UPDATE journal_entries SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		timeString(time.Now()), timeString(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRows(result, "journal entry not found or already deleted")
}

// Focus lines

func scanFocusLine(row interface{ Scan(...any) error }) (models.FocusLine, error) {
	var f models.FocusLine
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&f.ID, &f.Day, &f.Text, &f.Done, &createdAt, &updatedAt, &deletedAt); err != nil {
		return models.FocusLine{}, err
	}

	var err error
	if f.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.FocusLine{}, err
	}
	if f.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.FocusLine{}, err
	}
	if f.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.FocusLine{}, err
	}

	return f, nil
}

func (s *Store) UpsertFocusLine(line models.FocusLine) error {
	_, err := s.db.Exec(`
		INSERT INTO focus_lines (id, day, text, done, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day = excluded.day,
			text = excluded.text,
			done = excluded.done,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		line.ID, line.Day, line.Text, line.Done,
		timeString(line.CreatedAt), timeString(line.UpdatedAt), nullTimeString(line.DeletedAt))

	return err
}

func (s *Store) GetFocusLinesForDay(day string) ([]models.FocusLine, error) {
	return s.queryFocus(`
		SELECT id, day, text, done, created_at, updated_at, deleted_at
		FROM focus_lines WHERE day = ? AND deleted_at IS NULL
		ORDER BY created_at`, day)
}

func (s *Store) GetAllFocusLines() ([]models.FocusLine, error) {
	return s.queryFocus(`
		SELECT id, day, text, done, created_at, updated_at, deleted_at
		FROM focus_lines WHERE deleted_at IS NULL
		ORDER BY day DESC, created_at`)
}

func (s *Store) queryFocus(query string, args ...any) ([]models.FocusLine, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.FocusLine
	for rows.Next() {
		f, err := scanFocusLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, f)
	}

	return lines, rows.Err()
}

func (s *Store) DeleteFocusLine(id string) error {
	result, err := s.db.Exec(`
		UPDATE focus_lines SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		timeString(time.Now()), timeString(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRows(result, "focus line not found or already deleted")
}
