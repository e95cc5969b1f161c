package models

// Settings represents application-wide settings (singleton per user)
type Settings struct {
	Timezone       string `json:"timezone"`         // IANA timezone name, or "Local" for system timezone
	WeekStart      string `json:"week_start"`       // "monday" or "sunday"
	RateWindowDays int    `json:"rate_window_days"` // rolling window for completion rates
	SyncUserID     string `json:"sync_user_id"`     // empty means sync is disabled
	SyncServerURL  string `json:"sync_server_url"`  // base URL of the remote store
}

// SyncEnabled reports whether a sync account is configured.
// An empty user id means sync is off; that is a valid state, not an error.
func (s Settings) SyncEnabled() bool {
	return s.SyncUserID != ""
}
