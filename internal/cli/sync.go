package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daybook/internal/daemon"
	"github.com/julianstephens/daybook/internal/keyring"
	"github.com/julianstephens/daybook/internal/syncer"
)

type SyncCmd struct {
	Enable  SyncEnableCmd  `cmd:"" help:"Configure and enable sync."`
	Disable SyncDisableCmd `cmd:"" help:"Disable sync."`
	Now     SyncNowCmd     `cmd:"" help:"Push local data to the remote store now."`
	Pull    SyncPullCmd    `cmd:"" help:"Replace local data with the remote snapshot."`
	Status  SyncStatusCmd  `cmd:"" help:"Show sync configuration and last sync time."`
	Watch   SyncWatchCmd   `cmd:"" help:"Run in the foreground, syncing on every change."`
}

type SyncEnableCmd struct {
	Server string `help:"Remote store URL (daybookd base URL or postgres:// connection string)."`
	User   string `help:"Sync user ID."`
	Token  string `help:"Bearer token for the remote store (stored in the OS keyring)."`
}

func (c *SyncEnableCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	server := c.Server
	user := c.User
	token := c.Token
	if server == "" || user == "" {
		if server == "" {
			server = settings.SyncServerURL
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Server URL").
					Description("daybookd base URL, or a postgres:// connection string").
					Value(&server).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("server URL cannot be empty")
						}
						return nil
					}),
				huh.NewInput().
					Title("User ID").
					Value(&user).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("user ID cannot be empty")
						}
						return nil
					}),
				huh.NewInput().
					Title("Token").
					Description("Leave empty if the server does not require one").
					EchoMode(huh.EchoModePassword).
					Value(&token),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	if token != "" {
		if err := keyring.SetSyncToken(token); err != nil {
			return err
		}
	}

	settings.SyncServerURL = strings.TrimSpace(server)
	settings.SyncUserID = strings.TrimSpace(user)
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return err
	}

	fmt.Printf("Sync enabled for user %s against %s\n", settings.SyncUserID, settings.SyncServerURL)
	fmt.Println("Run 'daybook sync now' to push, or 'daybook sync watch' to sync continuously.")
	return nil
}

type SyncDisableCmd struct {
	ForgetToken bool `help:"Also remove the stored token from the OS keyring."`
}

func (c *SyncDisableCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if !settings.SyncEnabled() {
		fmt.Println("Sync is already disabled.")
		return nil
	}

	settings.SyncUserID = ""
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return err
	}

	if c.ForgetToken {
		if err := keyring.DeleteSyncToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
	}

	fmt.Println("Sync disabled. Local data is untouched.")
	return nil
}

type SyncNowCmd struct {
	Timeout time.Duration `help:"Abort the round-trip after this long." default:"30s"`
}

func (c *SyncNowCmd) Run(ctx *Context) error {
	orch, err := ctx.NewSyncer(syncer.DefaultConfig())
	if err != nil {
		if errors.Is(err, syncer.ErrNotConfigured) {
			return fmt.Errorf("sync is not configured (run 'daybook sync enable')")
		}
		return err
	}
	defer orch.Close()

	reqCtx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	if err := orch.Push(reqCtx); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	state := orch.State()
	if state.LastSyncedAt != nil {
		fmt.Printf("Pushed. Last synced at %s\n", state.LastSyncedAt.Local().Format(time.RFC1123))
	} else {
		fmt.Println("Pushed.")
	}
	return nil
}

type SyncPullCmd struct {
	Timeout time.Duration `help:"Abort the round-trip after this long." default:"30s"`
	Force   bool          `help:"Skip the confirmation prompt."`
}

func (c *SyncPullCmd) Run(ctx *Context) error {
	if !c.Force {
		confirmed := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Replace local data with the remote snapshot?").
					Description("Local changes that were never pushed will be lost.").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	orch, err := ctx.NewSyncer(syncer.DefaultConfig())
	if err != nil {
		if errors.Is(err, syncer.ErrNotConfigured) {
			return fmt.Errorf("sync is not configured (run 'daybook sync enable')")
		}
		return err
	}
	defer orch.Close()

	reqCtx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	if err := orch.Pull(reqCtx); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	fmt.Println("Pulled remote snapshot.")
	return nil
}

type SyncStatusCmd struct{}

func (c *SyncStatusCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if !settings.SyncEnabled() {
		fmt.Println("Sync: disabled")
		return nil
	}

	fmt.Printf("Sync:    enabled\n")
	fmt.Printf("User:    %s\n", settings.SyncUserID)
	fmt.Printf("Server:  %s\n", settings.SyncServerURL)

	if last := ctx.Store.LastSyncedAt(); last != nil {
		fmt.Printf("Last:    %s\n", last.Local().Format(time.RFC1123))
	} else {
		fmt.Printf("Last:    never\n")
	}

	if _, err := keyring.GetSyncToken(); err == nil {
		fmt.Printf("Token:   stored in OS keyring\n")
	} else if errors.Is(err, keyring.ErrNotFound) {
		fmt.Printf("Token:   none\n")
	} else {
		fmt.Printf("Token:   keyring unavailable (%v)\n", err)
	}

	return nil
}

type SyncWatchCmd struct {
	PullInterval time.Duration `help:"How often to refresh from the remote store (0 disables)." default:"5m"`
}

func (c *SyncWatchCmd) Run(ctx *Context) error {
	orch, err := ctx.NewSyncer(syncer.DefaultConfig())
	if err != nil {
		if errors.Is(err, syncer.ErrNotConfigured) {
			return fmt.Errorf("sync is not configured (run 'daybook sync enable')")
		}
		return err
	}
	defer orch.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch.Start(runCtx)

	fmt.Println("Watching for changes. Press Ctrl+C to stop.")
	d := daemon.New(ctx.DBPath, orch, daemon.Config{PullInterval: c.PullInterval})
	return d.Run(runCtx)
}
