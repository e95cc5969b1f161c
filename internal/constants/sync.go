package constants

import "time"

// Sync timing defaults. These gate when the orchestrator is allowed to talk
// to the remote store; see internal/sync for how each one is applied.
const (
	// DefaultPushDebounce is how long to wait after the last local mutation
	// before pushing. Each new mutation restarts the wait.
	DefaultPushDebounce = 2000 * time.Millisecond

	// DefaultStartupGrace suppresses pushes immediately after process start,
	// so hydration from the local database is never mistaken for user edits.
	DefaultStartupGrace = 3000 * time.Millisecond

	// DefaultPullCooldown suppresses automatic pushes after a completed pull,
	// so freshly pulled data is not immediately re-uploaded over.
	DefaultPullCooldown = 5000 * time.Millisecond

	// DefaultStartupPullDelay is how long to wait after start before the
	// one-time startup pull, letting the local store finish hydrating.
	DefaultStartupPullDelay = 500 * time.Millisecond
)

// DefaultRateWindowDays is the rolling window for habit completion rates
const DefaultRateWindowDays = 7
