package server

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daybook/internal/models"
)

// Repo is the server-side store of record: one row per entity per user,
// last writer wins on conflict. Completions land on their natural composite
// key (habit_id/day), everything else on its id.
type Repo struct {
	db *sql.DB
}

// OpenRepo opens (and if needed initializes) the server database.
func OpenRepo(path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open server database: %w", err)
	}

	r := &Repo{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) initSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS entities (
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			key TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, kind, key)
		);
		CREATE TABLE IF NOT EXISTS sync_users (
			user_id TEXT PRIMARY KEY,
			synced_at TEXT NOT NULL
		);`)
	if err != nil {
		return fmt.Errorf("failed to initialize server schema: %w", err)
	}
	return nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// Snapshot assembles the full stored state for a user.
func (r *Repo) Snapshot(userID string) (models.Snapshot, time.Time, error) {
	rows, err := r.db.Query(`
		SELECT kind, key, payload, updated_at FROM entities WHERE user_id = ?`, userID)
	if err != nil {
		return models.Snapshot{}, time.Time{}, err
	}
	defer rows.Close()

	var records []models.EntityRecord
	for rows.Next() {
		var rec models.EntityRecord
		var payload, updatedAt string
		if err := rows.Scan(&rec.Kind, &rec.Key, &payload, &updatedAt); err != nil {
			return models.Snapshot{}, time.Time{}, err
		}
		rec.Payload = []byte(payload)
		if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return models.Snapshot{}, time.Time{}, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return models.Snapshot{}, time.Time{}, err
	}

	snap, err := models.MergeRecords(records)
	if err != nil {
		return models.Snapshot{}, time.Time{}, err
	}

	syncedAt, err := r.watermark(userID)
	if err != nil {
		return models.Snapshot{}, time.Time{}, err
	}

	return snap, syncedAt, nil
}

// Apply upserts every entity in the snapshot and stamps a new watermark.
// Each record is applied independently; records absent from the snapshot are
// left untouched (deletions travel as soft-deleted records, not absence).
func (r *Repo) Apply(userID string, snap models.Snapshot) (time.Time, error) {
	records, err := models.SplitSnapshot(snap)
	if err != nil {
		return time.Time{}, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if _, err := tx.Exec(`
			INSERT INTO entities (user_id, kind, key, payload, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(user_id, kind, key) DO UPDATE SET
				payload = excluded.payload,
				updated_at = excluded.updated_at`,
			userID, rec.Kind, rec.Key, string(rec.Payload), rec.UpdatedAt.Format(time.RFC3339)); err != nil {
			return time.Time{}, fmt.Errorf("failed to upsert %s %s: %w", rec.Kind, rec.Key, err)
		}
	}

	syncedAt := time.Now().UTC().Truncate(time.Second)
	if _, err := tx.Exec(`
		INSERT INTO sync_users (user_id, synced_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET synced_at = excluded.synced_at`,
		userID, syncedAt.Format(time.RFC3339)); err != nil {
		return time.Time{}, fmt.Errorf("failed to stamp watermark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("failed to commit: %w", err)
	}

	return syncedAt, nil
}

func (r *Repo) watermark(userID string) (time.Time, error) {
	var value string
	err := r.db.QueryRow(`SELECT synced_at FROM sync_users WHERE user_id = ?`, userID).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Now().UTC().Truncate(time.Second), nil
		}
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse watermark: %w", err)
	}
	return t, nil
}
