package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daybook/internal/syncer"
	"github.com/julianstephens/daybook/internal/tui"
)

type DashboardCmd struct {
	NoSync bool `help:"Do not sync while the dashboard is open."`
}

func (c *DashboardCmd) Run(ctx *Context) error {
	var orch *syncer.Orchestrator
	if !c.NoSync {
		var err error
		orch, err = ctx.NewSyncer(syncer.DefaultConfig())
		if err != nil && !errors.Is(err, syncer.ErrNotConfigured) {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if orch != nil {
		orch.Start(runCtx)
		defer orch.Close()
	}

	p := tea.NewProgram(tui.New(ctx.Store, orch), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
