// Package daemon provides sync watch mode: a long-running process that
// observes the local replica file and schedules pushes when it changes.
//
// Other daybook invocations (or anything else touching the database) count as
// mutations here; the orchestrator's own guards still apply, so bursts are
// debounced and pulls are never raced.
package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/syncer"
)

// Config holds daemon configuration.
type Config struct {
	// PullInterval is how often to refresh from the remote store while
	// watching. Zero disables periodic pulls.
	PullInterval time.Duration
}

// DefaultConfig returns sensible defaults for watch mode.
func DefaultConfig() Config {
	return Config{
		PullInterval: 5 * time.Minute,
	}
}

// Daemon watches the replica file and feeds change events to the orchestrator.
type Daemon struct {
	dbPath string
	orch   *syncer.Orchestrator
	cfg    Config
}

// New creates a watch daemon for the given database file.
func New(dbPath string, orch *syncer.Orchestrator, cfg Config) *Daemon {
	return &Daemon{dbPath: dbPath, orch: orch, cfg: cfg}
}

// Run blocks until ctx is cancelled, scheduling a push for every write to the
// replica file and pulling on the configured interval.
func (d *Daemon) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file: SQLite swaps journal files
	// next to the database, and some editors replace files wholesale.
	dir := filepath.Dir(d.dbPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logger.Info("Watching replica", "path", d.dbPath)

	var pullTicker *time.Ticker
	var pullC <-chan time.Time
	if d.cfg.PullInterval > 0 {
		pullTicker = time.NewTicker(d.cfg.PullInterval)
		pullC = pullTicker.C
		defer pullTicker.Stop()
	}

	base := filepath.Base(d.dbPath)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			// Only the database file itself and its WAL matter.
			name := filepath.Base(event.Name)
			if name != base && name != base+"-wal" {
				continue
			}
			logger.Debug("Replica changed", "event", event.Op.String(), "file", name)
			d.orch.SchedulePush()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "error", err)

		case <-pullC:
			if err := d.orch.Pull(ctx); err != nil {
				logger.Warn("Periodic pull failed", "error", err)
			}
		}
	}
}
