package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/julianstephens/daybook/internal/models"
)

func (s *Store) GetSettings() (models.Settings, error) {
	row := s.db.QueryRow(`
		SELECT timezone, week_start, rate_window_days, sync_user_id, sync_server_url
		FROM settings WHERE id = 1`)

	var settings models.Settings
	err := row.Scan(&settings.Timezone, &settings.WeekStart, &settings.RateWindowDays,
		&settings.SyncUserID, &settings.SyncServerURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Settings{}, nil
		}
		return models.Settings{}, err
	}

	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (id, timezone, week_start, rate_window_days, sync_user_id, sync_server_url)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timezone = excluded.timezone,
			week_start = excluded.week_start,
			rate_window_days = excluded.rate_window_days,
			sync_user_id = excluded.sync_user_id,
			sync_server_url = excluded.sync_server_url`,
		settings.Timezone, settings.WeekStart, settings.RateWindowDays,
		settings.SyncUserID, settings.SyncServerURL)

	return err
}

// Sync watermark

func (s *Store) GetLastSyncedAt() (*time.Time, error) {
	row := s.db.QueryRow(`SELECT last_synced_at FROM sync_meta WHERE id = 1`)

	var value sql.NullString
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return parseNullTime("last_synced_at", value)
}

func (s *Store) SetLastSyncedAt(t time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_meta (id, last_synced_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_synced_at = excluded.last_synced_at`,
		timeString(t))
	return err
}
