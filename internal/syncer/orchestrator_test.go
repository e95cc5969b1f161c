package syncer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/storage"
	"github.com/julianstephens/daybook/internal/store"
	"github.com/julianstephens/daybook/internal/transport"
)

// fakeTransport records round-trips and can inject failures and latency.
type fakeTransport struct {
	mu          sync.Mutex
	pushes      int
	pulls       int
	pushErr     error
	pullErr     error
	delay       time.Duration
	pullDelay   time.Duration
	inFlight    int
	overlap     bool
	snapshot    models.Snapshot
	pullDoneAt  time.Time
	firstPushAt time.Time
}

func (f *fakeTransport) FetchAll(ctx context.Context, userID string) (*transport.PullResult, error) {
	f.mu.Lock()
	delay := f.pullDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.pulls++
	err := f.pullErr
	snap := f.snapshot
	if err == nil && f.pullDoneAt.IsZero() {
		f.pullDoneAt = time.Now()
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &transport.PullResult{Snapshot: snap, SyncedAt: time.Now().UTC()}, nil
}

func (f *fakeTransport) UpsertAll(ctx context.Context, userID string, snap models.Snapshot, lastSyncedAt *time.Time) (*transport.PushResult, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > 1 {
		f.overlap = true
	}
	if f.firstPushAt.IsZero() {
		f.firstPushAt = time.Now()
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.pushes++
	err := f.pushErr
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &transport.PushResult{SyncedAt: time.Now().UTC()}, nil
}

func (f *fakeTransport) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes
}

func (f *fakeTransport) pullCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulls
}

func (f *fakeTransport) times() (pullDone, firstPush time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pullDoneAt, f.firstPushAt
}

func setupLocalStore(t *testing.T) *store.LocalStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	provider := storage.NewSQLiteStore(dbPath)
	if err := provider.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { provider.Close() })

	local := store.New(provider)
	if err := local.Hydrate(); err != nil {
		t.Fatalf("failed to hydrate local store: %v", err)
	}
	return local
}

func testConfig() Config {
	return Config{
		PushDebounce:     50 * time.Millisecond,
		StartupGrace:     0,
		PullCooldown:     200 * time.Millisecond,
		StartupPullDelay: 10 * time.Millisecond,
	}
}

func TestScheduledPushesCoalesce(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{}
	o := New(local, remote, "u1", testConfig())
	defer o.Close()

	for i := 0; i < 5; i++ {
		o.SchedulePush()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)

	if got := remote.pushCount(); got != 1 {
		t.Errorf("expected burst of 5 mutations to coalesce into 1 push, got %d", got)
	}
}

func TestMutationDuringDebounceRestartsTimer(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{}
	cfg := testConfig()
	cfg.PushDebounce = 100 * time.Millisecond
	o := New(local, remote, "u1", cfg)
	defer o.Close()

	o.SchedulePush()
	time.Sleep(60 * time.Millisecond)
	o.SchedulePush()

	// 60ms into the first window the timer was rearmed; the original deadline
	// passing must not fire a push.
	time.Sleep(60 * time.Millisecond)
	if got := remote.pushCount(); got != 0 {
		t.Fatalf("push fired before the restarted debounce elapsed, got %d", got)
	}

	time.Sleep(100 * time.Millisecond)
	if got := remote.pushCount(); got != 1 {
		t.Errorf("expected exactly 1 push after debounce, got %d", got)
	}
}

func TestExplicitPushesQueueFIFO(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{delay: 30 * time.Millisecond}
	o := New(local, remote, "u1", testConfig())
	defer o.Close()

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = o.Push(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("push %d failed: %v", i, err)
		}
	}
	if got := remote.pushCount(); got != 3 {
		t.Errorf("expected 3 round-trips (no coalescing of explicit pushes), got %d", got)
	}
	if remote.overlap {
		t.Error("pushes overlapped; expected single-flight execution")
	}
}

func TestPullCooldownDefersScheduledPush(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{}
	o := New(local, remote, "u1", testConfig())
	defer o.Close()

	if err := o.Pull(context.Background()); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	o.SchedulePush()

	// Inside the 200ms cooldown window nothing may fire, even though the
	// 50ms debounce has long elapsed.
	time.Sleep(120 * time.Millisecond)
	if got := remote.pushCount(); got != 0 {
		t.Fatalf("push fired during pull cooldown, got %d", got)
	}

	time.Sleep(250 * time.Millisecond)
	if got := remote.pushCount(); got != 1 {
		t.Errorf("expected deferred push after cooldown, got %d", got)
	}
}

func TestStartupGraceSuppressesScheduledPushes(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{}
	cfg := testConfig()
	cfg.StartupGrace = time.Hour
	o := New(local, remote, "u1", cfg)
	defer o.Close()

	o.SchedulePush()
	time.Sleep(150 * time.Millisecond)

	if got := remote.pushCount(); got != 0 {
		t.Errorf("expected no push during startup grace, got %d", got)
	}
}

func TestStartupPullReplacesLocalState(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{
		snapshot: models.Snapshot{
			Habits: []models.Habit{{
				ID:        "remote-habit",
				Name:      "Stretch",
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}},
		},
	}
	o := New(local, remote, "u1", testConfig())
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	time.Sleep(150 * time.Millisecond)

	if got := remote.pullCount(); got != 1 {
		t.Fatalf("expected exactly 1 startup pull, got %d", got)
	}

	habits, err := local.Provider().GetAllHabits(true, true)
	if err != nil {
		t.Fatalf("failed to read habits: %v", err)
	}
	if len(habits) != 1 || habits[0].ID != "remote-habit" {
		t.Errorf("expected local store to hold the pulled habit, got %v", habits)
	}
	if local.LastSyncedAt() == nil {
		t.Error("expected watermark to be set after pull")
	}
}

func TestFirstPushWaitsForStartupPull(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{pullDelay: 100 * time.Millisecond}
	cfg := Config{
		PushDebounce:     50 * time.Millisecond,
		StartupGrace:     150 * time.Millisecond,
		PullCooldown:     100 * time.Millisecond,
		StartupPullDelay: 20 * time.Millisecond,
	}
	o := New(local, remote, "u1", cfg)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	// Mutations land while the startup pull is still in flight and keep
	// arriving past the end of the grace period.
	for i := 0; i < 6; i++ {
		time.Sleep(30 * time.Millisecond)
		habit := models.Habit{
			ID:        fmt.Sprintf("h%d", i),
			Name:      "Read",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := local.AddHabit(habit); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}
	}

	time.Sleep(400 * time.Millisecond)

	if got := remote.pullCount(); got != 1 {
		t.Fatalf("expected exactly 1 startup pull, got %d", got)
	}
	pullDone, firstPush := remote.times()
	if pullDone.IsZero() {
		t.Fatal("startup pull never completed")
	}
	if firstPush.IsZero() {
		t.Fatal("mutations after the grace period never produced a push")
	}
	if !firstPush.After(pullDone) {
		t.Errorf("first push started %v before the startup pull completed",
			pullDone.Sub(firstPush))
	}
}

func TestPullDoesNotScheduleAPush(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{}
	o := New(local, remote, "u1", testConfig())
	defer o.Close()

	if err := o.Pull(context.Background()); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	// The pull wrote local state wholesale; the change hook must not have
	// fired for it, so no push should ever happen.
	time.Sleep(300 * time.Millisecond)
	if got := remote.pushCount(); got != 0 {
		t.Errorf("pull triggered %d push(es); replaced data must not schedule a push", got)
	}
}

func TestPushFailureSetsErrorStatusAndRecovers(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{pushErr: errors.New("connection refused")}
	o := New(local, remote, "u1", testConfig())
	defer o.Close()

	if err := o.Push(context.Background()); err == nil {
		t.Fatal("expected push to fail")
	}

	state := o.State()
	if state.Status != models.SyncError {
		t.Errorf("expected status %q, got %q", models.SyncError, state.Status)
	}
	if state.LastError == "" {
		t.Error("expected LastError to be set")
	}
	if local.LastSyncedAt() != nil {
		t.Error("failed push must not advance the watermark")
	}

	remote.mu.Lock()
	remote.pushErr = nil
	remote.mu.Unlock()

	if err := o.Push(context.Background()); err != nil {
		t.Fatalf("expected push to recover, got %v", err)
	}
	if state := o.State(); state.Status != models.SyncIdle {
		t.Errorf("expected status %q after recovery, got %q", models.SyncIdle, state.Status)
	}
}

func TestPushIsIdempotentOnUnchangedState(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{}
	o := New(local, remote, "u1", testConfig())
	defer o.Close()

	if err := o.Push(context.Background()); err != nil {
		t.Fatalf("first push failed: %v", err)
	}
	before, err := local.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if err := o.Push(context.Background()); err != nil {
		t.Fatalf("second push failed: %v", err)
	}
	after, err := local.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if len(before.Habits) != len(after.Habits) || len(before.Completions) != len(after.Completions) {
		t.Error("pushing unchanged state must not mutate local collections")
	}
	if got := remote.pushCount(); got != 2 {
		t.Errorf("expected 2 round-trips, got %d", got)
	}
}

func TestNotConfigured(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{}
	o := New(local, remote, "", testConfig())
	defer o.Close()

	if err := o.Push(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured from explicit push, got %v", err)
	}
	if err := o.Pull(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured from explicit pull, got %v", err)
	}

	// Scheduled pushes are a silent no-op when sync is off.
	o.SchedulePush()
	time.Sleep(150 * time.Millisecond)
	if got := remote.pushCount(); got != 0 {
		t.Errorf("expected no push when unconfigured, got %d", got)
	}
}

func TestMutationSchedulesPushThroughChangeHook(t *testing.T) {
	local := setupLocalStore(t)
	remote := &fakeTransport{}
	o := New(local, remote, "u1", testConfig())
	defer o.Close()

	habit := models.Habit{
		ID:        "h1",
		Name:      "Read",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := local.AddHabit(habit); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := remote.pushCount(); got != 1 {
		t.Errorf("expected a mutation to schedule exactly 1 push, got %d", got)
	}
}
