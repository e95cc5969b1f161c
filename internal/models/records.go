package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entity kinds as stored by the remote store.
const (
	KindHabit      = "habit"
	KindCompletion = "completion"
	KindJournal    = "journal"
	KindFocus      = "focus"
	KindInterest   = "interest"
	KindSettings   = "settings"
)

// EntityRecord is the remote store's unit of write: one entity, one row.
// The remote applies records independently (last writer wins per record),
// so concurrent pushes touching different records both survive.
type EntityRecord struct {
	Kind      string          `json:"kind"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CompletionKey builds the natural composite key for a completion record.
func CompletionKey(habitID, day string) string {
	return habitID + "/" + day
}

// SplitSnapshot flattens a snapshot into entity records for the remote store.
func SplitSnapshot(snap Snapshot) ([]EntityRecord, error) {
	var records []EntityRecord

	add := func(kind, key string, updatedAt time.Time, v any) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", kind, key, err)
		}
		records = append(records, EntityRecord{Kind: kind, Key: key, Payload: payload, UpdatedAt: updatedAt})
		return nil
	}

	for _, h := range snap.Habits {
		if err := add(KindHabit, h.ID, h.UpdatedAt, h); err != nil {
			return nil, err
		}
	}
	for _, c := range snap.Completions {
		if err := add(KindCompletion, CompletionKey(c.HabitID, c.Day), c.UpdatedAt, c); err != nil {
			return nil, err
		}
	}
	for _, e := range snap.Journal {
		if err := add(KindJournal, e.ID, e.UpdatedAt, e); err != nil {
			return nil, err
		}
	}
	for _, f := range snap.FocusLines {
		if err := add(KindFocus, f.ID, f.UpdatedAt, f); err != nil {
			return nil, err
		}
	}
	for _, a := range snap.Interests {
		if err := add(KindInterest, a.ID, a.UpdatedAt, a); err != nil {
			return nil, err
		}
	}
	if snap.Settings != nil {
		if err := add(KindSettings, "settings", time.Time{}, snap.Settings); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// MergeRecords reassembles a snapshot from entity records.
// Records of unknown kind are skipped rather than failing the pull.
func MergeRecords(records []EntityRecord) (Snapshot, error) {
	var snap Snapshot

	for _, r := range records {
		switch r.Kind {
		case KindHabit:
			var h Habit
			if err := json.Unmarshal(r.Payload, &h); err != nil {
				return snap, fmt.Errorf("failed to decode habit %s: %w", r.Key, err)
			}
			snap.Habits = append(snap.Habits, h)
		case KindCompletion:
			var c HabitCompletion
			if err := json.Unmarshal(r.Payload, &c); err != nil {
				return snap, fmt.Errorf("failed to decode completion %s: %w", r.Key, err)
			}
			snap.Completions = append(snap.Completions, c)
		case KindJournal:
			var e JournalEntry
			if err := json.Unmarshal(r.Payload, &e); err != nil {
				return snap, fmt.Errorf("failed to decode journal entry %s: %w", r.Key, err)
			}
			snap.Journal = append(snap.Journal, e)
		case KindFocus:
			var f FocusLine
			if err := json.Unmarshal(r.Payload, &f); err != nil {
				return snap, fmt.Errorf("failed to decode focus line %s: %w", r.Key, err)
			}
			snap.FocusLines = append(snap.FocusLines, f)
		case KindInterest:
			var a InterestArea
			if err := json.Unmarshal(r.Payload, &a); err != nil {
				return snap, fmt.Errorf("failed to decode interest area %s: %w", r.Key, err)
			}
			snap.Interests = append(snap.Interests, a)
		case KindSettings:
			var s Settings
			if err := json.Unmarshal(r.Payload, &s); err != nil {
				return snap, fmt.Errorf("failed to decode settings: %w", err)
			}
			snap.Settings = &s
		}
	}

	return snap, nil
}
