package transport

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/julianstephens/daybook/internal/models"
)

// PostgresTransport syncs directly against a shared Postgres database instead
// of a daybookd server. The schema mirrors the server's: one row per entity,
// keyed (user_id, kind, key), last writer wins on conflict.
type PostgresTransport struct {
	db *sql.DB
}

var _ Transport = (*PostgresTransport)(nil)

// NewPostgresTransport opens a connection with the given connection string.
// The caller is responsible for keeping credentials out of the string
// (use the keyring, environment variables, or .pgpass).
func NewPostgresTransport(connStr string) (*PostgresTransport, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	t := &PostgresTransport{db: db}
	if err := t.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

func (t *PostgresTransport) ensureSchema() error {
	_, err := t.db.Exec(`
		CREATE TABLE IF NOT EXISTS daybook_entities (
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			key TEXT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, kind, key)
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure daybook_entities table: %w", err)
	}
	return nil
}

func (t *PostgresTransport) Close() error {
	return t.db.Close()
}

func (t *PostgresTransport) FetchAll(ctx context.Context, userID string) (*PullResult, error) {
	if userID == "" {
		return nil, ErrNotConfigured
	}

	rows, err := t.db.QueryContext(ctx, `
		SELECT kind, key, payload, updated_at
		FROM daybook_entities WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote snapshot: %w", err)
	}
	defer rows.Close()

	var records []models.EntityRecord
	for rows.Next() {
		var r models.EntityRecord
		if err := rows.Scan(&r.Kind, &r.Key, &r.Payload, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entity records: %w", err)
	}

	snap, err := models.MergeRecords(records)
	if err != nil {
		return nil, err
	}

	return &PullResult{Snapshot: snap, SyncedAt: time.Now().UTC()}, nil
}

func (t *PostgresTransport) UpsertAll(ctx context.Context, userID string, snap models.Snapshot, lastSyncedAt *time.Time) (*PushResult, error) {
	if userID == "" {
		return nil, ErrNotConfigured
	}

	records, err := models.SplitSnapshot(snap)
	if err != nil {
		return nil, err
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin push transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO daybook_entities (user_id, kind, key, payload, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, kind, key) DO UPDATE SET
				payload = excluded.payload,
				updated_at = excluded.updated_at`,
			userID, r.Kind, r.Key, []byte(r.Payload), r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to upsert %s %s: %w", r.Kind, r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit push: %w", err)
	}

	return &PushResult{SyncedAt: time.Now().UTC()}, nil
}
