package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/daybook/internal/keyring"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/store"
	"github.com/julianstephens/daybook/internal/syncer"
	"github.com/julianstephens/daybook/internal/transport"
	"github.com/julianstephens/daybook/internal/utils"
)

type Context struct {
	Store *store.LocalStore

	// DBPath is the resolved database file path, used by watch mode and
	// diagnostics.
	DBPath string
}

// Settings loads the settings singleton.
func (c *Context) Settings() (models.Settings, error) {
	return c.Store.Provider().GetSettings()
}

// Today returns today's date string in the configured timezone.
func (c *Context) Today() (string, error) {
	settings, err := c.Settings()
	if err != nil {
		return "", err
	}
	return utils.TodayFromSettings(settings)
}

// FindHabit looks up an active habit by name.
func (c *Context) FindHabit(name string) (models.Habit, error) {
	habit, err := c.Store.Provider().GetHabitByName(name)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %q not found", name)
	}
	return habit, nil
}

// NewSyncer builds an orchestrator from the configured sync account.
// Returns syncer.ErrNotConfigured when sync is disabled.
func (c *Context) NewSyncer(cfg syncer.Config) (*syncer.Orchestrator, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	if !settings.SyncEnabled() {
		return nil, syncer.ErrNotConfigured
	}

	remote, err := NewTransport(settings)
	if err != nil {
		return nil, err
	}

	return syncer.New(c.Store, remote, settings.SyncUserID, cfg), nil
}

// NewTransport builds the remote store transport for the configured server.
// A postgres:// URL gets a direct database transport; anything else is
// treated as a daybookd base URL.
func NewTransport(settings models.Settings) (transport.Transport, error) {
	url := settings.SyncServerURL
	if url == "" {
		return nil, fmt.Errorf("sync server URL is not set (run 'daybook sync enable')")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return transport.NewPostgresTransport(url)
	}

	token, err := keyring.GetSyncToken()
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return nil, err
	}
	return transport.NewHTTPTransport(url, token), nil
}
