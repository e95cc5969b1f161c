package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/cli/system"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/storage"
	"github.com/julianstephens/daybook/internal/store"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path." type:"string" default:"~/.config/daybook/daybook.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init      system.InitCmd    `cmd:"" help:"Initialize daybook storage."`
	Migrate   system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Dashboard cli.DashboardCmd  `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Habit     cli.HabitCmd      `cmd:"" help:"Manage habits and habit tracking."`
	Journal   cli.JournalCmd    `cmd:"" help:"Write and browse journal entries."`
	Focus     cli.FocusCmd      `cmd:"" help:"Manage daily focus lines."`
	Interest  cli.InterestCmd   `cmd:"" help:"Manage interest areas."`
	Settings  cli.SettingsCmd   `cmd:"" help:"Manage application settings."`
	Sync      cli.SyncCmd       `cmd:"" help:"Sync with a remote store."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("daybook"),
		kong.Description("Personal dashboard: habits, journal, and focus, synced across machines"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	dbPath := storage.ExpandPath(CLI.Config)
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(dbPath)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	provider := storage.NewSQLiteStore(dbPath)
	localStore := store.New(provider)

	appCtx := &cli.Context{
		Store:  localStore,
		DBPath: dbPath,
	}

	// Init handles its own setup; everything else needs a hydrated replica.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := localStore.Hydrate(); err != nil {
			apperrors.Fatal(err)
		}
		defer provider.Close()
	}

	if err := ctx.Run(appCtx); err != nil {
		provider.Close()
		apperrors.Fatal(err)
	}
}
