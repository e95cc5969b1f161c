// Package store holds the client-side replica: the entity collections plus
// the lastSyncedAt watermark. It is the single writer of the local database;
// every mutation writes through to durable storage and then notifies the
// sync orchestrator so a push can be scheduled.
package store

import (
	"sync"
	"time"

	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/storage"
)

// LocalStore wraps the durable storage Provider with mutation notification
// and watermark bookkeeping. Reads pass straight through; mutations fire the
// registered change hook after committing.
type LocalStore struct {
	provider storage.Provider

	mu           sync.RWMutex
	lastSyncedAt *time.Time
	onChange     func()
}

func New(provider storage.Provider) *LocalStore {
	return &LocalStore{provider: provider}
}

// Hydrate opens the durable store and loads the sync watermark.
// Must be called before any other method.
func (ls *LocalStore) Hydrate() error {
	if err := ls.provider.Load(); err != nil {
		return err
	}

	watermark, err := ls.provider.GetLastSyncedAt()
	if err != nil {
		return err
	}

	ls.mu.Lock()
	ls.lastSyncedAt = watermark
	ls.mu.Unlock()
	return nil
}

// OnChange registers the hook fired after every local mutation.
// Only one hook is supported; the sync orchestrator owns it.
func (ls *LocalStore) OnChange(fn func()) {
	ls.mu.Lock()
	ls.onChange = fn
	ls.mu.Unlock()
}

func (ls *LocalStore) notify() {
	ls.mu.RLock()
	fn := ls.onChange
	ls.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Snapshot reads the full current state of every watched collection.
func (ls *LocalStore) Snapshot() (models.Snapshot, error) {
	return ls.provider.LoadSnapshot()
}

// Replace overwrites the local collections with a freshly pulled snapshot and
// records the server watermark. It does NOT fire the change hook: pulled data
// is already remote state and must not immediately schedule a push.
func (ls *LocalStore) Replace(snap models.Snapshot, syncedAt time.Time) error {
	if err := ls.provider.ReplaceSnapshot(snap); err != nil {
		return err
	}
	return ls.SetLastSyncedAt(syncedAt)
}

// LastSyncedAt returns the watermark of the last successful round-trip,
// or nil if this replica has never synced.
func (ls *LocalStore) LastSyncedAt() *time.Time {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	if ls.lastSyncedAt == nil {
		return nil
	}
	t := *ls.lastSyncedAt
	return &t
}

// SetLastSyncedAt persists and caches the watermark.
func (ls *LocalStore) SetLastSyncedAt(t time.Time) error {
	if err := ls.provider.SetLastSyncedAt(t); err != nil {
		return err
	}
	ls.mu.Lock()
	ls.lastSyncedAt = &t
	ls.mu.Unlock()
	return nil
}

// Provider exposes the underlying durable storage for read-only use.
// Mutations must go through LocalStore so the change hook fires.
func (ls *LocalStore) Provider() storage.Provider {
	return ls.provider
}
