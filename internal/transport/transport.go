// Package transport talks to the remote store of record. Both operations are
// all-or-nothing: a push sends the full local snapshot, a pull fetches the
// full remote one. Partial success is not modeled.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/daybook/internal/models"
)

// ErrNotConfigured is returned when a transport is asked to sync without a
// user id. Callers treat it as "sync is off", not as a failure.
var ErrNotConfigured = errors.New("sync is not configured")

// PullResult is the remote snapshot plus the server watermark.
type PullResult struct {
	Snapshot models.Snapshot
	SyncedAt time.Time
}

// PushResult carries the server watermark acknowledged for a push.
type PushResult struct {
	SyncedAt time.Time
}

// Transport is the remote store collaborator.
//
// Implementations are free to fail with any error; the orchestrator surfaces
// every failure the same way (status Error, local state untouched). No
// timeout is imposed here beyond what the context carries.
type Transport interface {
	// FetchAll retrieves the full remote snapshot for the user.
	FetchAll(ctx context.Context, userID string) (*PullResult, error)

	// UpsertAll writes the full local snapshot to the remote store.
	// lastSyncedAt is advisory: the server may use it to detect staleness
	// but applies last-writer-wins per entity regardless.
	UpsertAll(ctx context.Context, userID string, snap models.Snapshot, lastSyncedAt *time.Time) (*PushResult, error)
}
