// Package syncer coordinates the local replica and the remote store.
//
// The orchestrator owns four disciplines:
//
//   - a trailing-edge debounce on local mutations, so bursts of edits
//     coalesce into one push;
//   - a startup grace period, so hydration from the local database is never
//     pushed as if it were user edits;
//   - a cooldown window after every completed pull, so freshly pulled data is
//     not immediately re-uploaded over;
//   - a single-flight FIFO queue on push, so round-trips never overlap and
//     concurrent callers each get their own turn instead of being dropped.
//
// Conflict resolution is last-writer-wins per entity record. Two devices
// editing the same record between pulls silently resolve to whichever push
// lands last; that limitation is accepted, not detected.
package syncer
