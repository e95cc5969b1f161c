package cli

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/daybook/internal/utils"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Change a setting."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	fmt.Printf("timezone:         %s\n", settings.Timezone)
	fmt.Printf("week-start:       %s\n", settings.WeekStart)
	fmt.Printf("rate-window-days: %d\n", settings.RateWindowDays)
	if settings.SyncEnabled() {
		fmt.Printf("sync:             enabled (user %s, server %s)\n", settings.SyncUserID, settings.SyncServerURL)
	} else {
		fmt.Printf("sync:             disabled\n")
	}
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting key (timezone|week-start|rate-window-days)."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	switch c.Key {
	case "timezone":
		if _, err := utils.LoadLocation(c.Value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Value, err)
		}
		settings.Timezone = c.Value
	case "week-start":
		if c.Value != "monday" && c.Value != "sunday" {
			return fmt.Errorf("week-start must be 'monday' or 'sunday'")
		}
		settings.WeekStart = c.Value
	case "rate-window-days":
		n, err := strconv.Atoi(c.Value)
		if err != nil || n <= 0 {
			return fmt.Errorf("rate-window-days must be a positive integer")
		}
		settings.RateWindowDays = n
	default:
		return fmt.Errorf("unknown setting %q", c.Key)
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return err
	}

	fmt.Printf("Set %s = %s\n", c.Key, c.Value)
	return nil
}
