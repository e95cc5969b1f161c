package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/store"
	"github.com/julianstephens/daybook/internal/transport"
)

var (
	// ErrNotConfigured is returned by explicit Push/Pull when no sync account
	// is set. Scheduled pushes treat the same condition as a silent no-op.
	ErrNotConfigured = errors.New("sync is not configured")

	// ErrBusy is returned when a pull is requested while a round-trip is
	// already in flight. Pushes are queued instead.
	ErrBusy = errors.New("sync already in progress")
)

// Config holds the orchestrator's timing knobs. Tests shrink these;
// production uses the defaults.
type Config struct {
	PushDebounce     time.Duration
	StartupGrace     time.Duration
	PullCooldown     time.Duration
	StartupPullDelay time.Duration
}

// DefaultConfig returns the standard timing values.
func DefaultConfig() Config {
	return Config{
		PushDebounce:     constants.DefaultPushDebounce,
		StartupGrace:     constants.DefaultStartupGrace,
		PullCooldown:     constants.DefaultPullCooldown,
		StartupPullDelay: constants.DefaultStartupPullDelay,
	}
}

// Orchestrator is the coordination layer between the local replica and the
// remote store. One instance exists per enabled sync session; it is created
// when sync is enabled and discarded when sync is disabled.
type Orchestrator struct {
	cfg    Config
	local  *store.LocalStore
	remote transport.Transport
	userID string

	mu           sync.Mutex
	status       models.SyncStatus
	lastError    string
	startedAt    time.Time
	lastPullDone time.Time // zero until the first pull completes
	debounce     *time.Timer
	pushing      bool
	pushQueue    []chan error
	closed       bool
}

// New creates an orchestrator for the given sync account and wires itself as
// the local store's change hook so every mutation schedules a push.
func New(local *store.LocalStore, remote transport.Transport, userID string, cfg Config) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		local:     local,
		remote:    remote,
		userID:    userID,
		status:    models.SyncIdle,
		startedAt: time.Now(),
	}
	local.OnChange(o.SchedulePush)
	return o
}

// Start kicks off the one-time startup pull after a short delay, giving the
// local store time to finish hydrating before it is overwritten by server
// data. No push runs before this pull completes: pushes are still inside the
// startup grace period, and the pull's Syncing status and cooldown window
// block any that are scheduled while it runs.
func (o *Orchestrator) Start(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(o.cfg.StartupPullDelay):
		}
		if err := o.Pull(ctx); err != nil {
			logger.Warn("Startup pull failed", "error", err)
		}
	}()
}

// Close cancels any pending debounce timer and detaches the orchestrator.
// An in-flight round-trip is not cancelled; it runs to completion.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	if o.debounce != nil {
		o.debounce.Stop()
		o.debounce = nil
	}
}

// State reports the sync status the UI layer displays.
func (o *Orchestrator) State() models.SyncState {
	o.mu.Lock()
	defer o.mu.Unlock()

	queued := len(o.pushQueue)
	if o.pushing {
		queued++
	}
	return models.SyncState{
		UserID:       o.userID,
		Status:       o.status,
		LastSyncedAt: o.local.LastSyncedAt(),
		LastError:    o.lastError,
		QueuedPushes: queued,
	}
}

// SchedulePush is the mutation hook. It (re)arms the trailing-edge debounce
// timer when all guards hold:
//
//  1. sync is enabled,
//  2. the startup grace period has elapsed,
//  3. no round-trip is currently in flight,
//  4. no pull completed within the cooldown window (if one did, the timer is
//     deferred to the end of the cooldown instead).
//
// Guards 3 and 4 are re-validated when the timer fires, since state may have
// changed during the wait.
func (o *Orchestrator) SchedulePush() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || o.userID == "" {
		return
	}
	if time.Since(o.startedAt) < o.cfg.StartupGrace {
		return
	}
	if o.status == models.SyncSyncing {
		return
	}
	if rem := o.cooldownRemainingLocked(); rem > 0 {
		o.armLocked(rem)
		return
	}
	o.armLocked(o.cfg.PushDebounce)
}

// armLocked replaces the pending debounce deadline. Cancelling the previous
// timer and creating a new one makes each qualifying mutation restart the
// wait, which is what coalesces bursts into a single round-trip.
func (o *Orchestrator) armLocked(d time.Duration) {
	if o.debounce != nil {
		o.debounce.Stop()
	}
	o.debounce = time.AfterFunc(d, o.debounceFired)
}

func (o *Orchestrator) debounceFired() {
	o.mu.Lock()
	if o.closed || o.userID == "" {
		o.mu.Unlock()
		return
	}
	if o.status == models.SyncSyncing {
		// A round-trip is running; try again after another debounce interval.
		o.armLocked(o.cfg.PushDebounce)
		o.mu.Unlock()
		return
	}
	if rem := o.cooldownRemainingLocked(); rem > 0 {
		o.armLocked(rem)
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	if err := o.Push(context.Background()); err != nil {
		logger.Warn("Scheduled push failed", "error", err)
	}
}

func (o *Orchestrator) cooldownRemainingLocked() time.Duration {
	if o.lastPullDone.IsZero() {
		return 0
	}
	elapsed := time.Since(o.lastPullDone)
	if elapsed >= o.cfg.PullCooldown {
		return 0
	}
	return o.cfg.PullCooldown - elapsed
}

// Push uploads the full local snapshot to the remote store.
//
// At most one push is in flight at a time. A caller arriving while one is
// running joins a FIFO queue; each queued caller gets its own round-trip, in
// order, carrying the snapshot as it stands at that point. Callers are never
// dropped or coalesced.
func (o *Orchestrator) Push(ctx context.Context) error {
	o.mu.Lock()
	if o.userID == "" {
		o.mu.Unlock()
		return ErrNotConfigured
	}
	if o.pushing {
		done := make(chan error, 1)
		o.pushQueue = append(o.pushQueue, done)
		o.mu.Unlock()
		return <-done
	}
	if o.status == models.SyncSyncing {
		// A pull is running; push and pull mutually exclude each other.
		o.mu.Unlock()
		return ErrBusy
	}
	o.pushing = true
	o.status = models.SyncSyncing
	o.mu.Unlock()

	err := o.pushOnce(ctx)
	o.finishPush(err)
	return err
}

// pushOnce performs a single push round-trip. Push is read-only against the
// local store, so a failure needs no rollback.
func (o *Orchestrator) pushOnce(ctx context.Context) error {
	snap, err := o.local.Snapshot()
	if err != nil {
		return err
	}

	result, err := o.remote.UpsertAll(ctx, o.userID, snap, o.local.LastSyncedAt())
	if err != nil {
		return err
	}

	if err := o.local.SetLastSyncedAt(result.SyncedAt); err != nil {
		return err
	}

	logger.Debug("Push complete", "synced_at", result.SyncedAt)
	return nil
}

// finishPush records the outcome and, if callers are queued, starts the next
// round-trip. Errors are not sticky: the next successful attempt returns the
// status to Idle.
func (o *Orchestrator) finishPush(err error) {
	o.mu.Lock()

	if err != nil {
		o.status = models.SyncError
		o.lastError = err.Error()
	} else {
		o.status = models.SyncIdle
		o.lastError = ""
	}

	if len(o.pushQueue) == 0 {
		o.pushing = false
		o.mu.Unlock()
		return
	}

	next := o.pushQueue[0]
	o.pushQueue = o.pushQueue[1:]
	o.status = models.SyncSyncing
	o.mu.Unlock()

	go func() {
		err := o.pushOnce(context.Background())
		o.finishPush(err)
		next <- err
	}()
}

// Pull fetches the full remote snapshot and replaces the local collections
// wholesale. On success it stamps the cooldown window so scheduled pushes
// hold off until the pulled data has settled.
func (o *Orchestrator) Pull(ctx context.Context) error {
	o.mu.Lock()
	if o.userID == "" {
		o.mu.Unlock()
		return ErrNotConfigured
	}
	if o.status == models.SyncSyncing {
		o.mu.Unlock()
		return ErrBusy
	}
	o.status = models.SyncSyncing
	o.mu.Unlock()

	result, err := o.remote.FetchAll(ctx, o.userID)
	if err == nil {
		err = o.local.Replace(result.Snapshot, result.SyncedAt)
	}

	o.mu.Lock()
	if err != nil {
		o.status = models.SyncError
		o.lastError = err.Error()
	} else {
		o.status = models.SyncIdle
		o.lastError = ""
		o.lastPullDone = time.Now()
	}
	o.mu.Unlock()

	if err != nil {
		return err
	}

	logger.Debug("Pull complete", "synced_at", result.SyncedAt)
	return nil
}
