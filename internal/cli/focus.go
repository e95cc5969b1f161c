package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/utils"
)

type FocusCmd struct {
	Add    FocusAddCmd    `cmd:"" help:"Add a focus line for a day."`
	List   FocusListCmd   `cmd:"" help:"Show focus lines for a day."`
	Done   FocusDoneCmd   `cmd:"" help:"Toggle a focus line done."`
	Delete FocusDeleteCmd `cmd:"" help:"Delete a focus line."`
}

type FocusAddCmd struct {
	Text string `arg:"" help:"The intention text."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *FocusAddCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	day, err := utils.DayOrToday(c.Date, settings)
	if err != nil {
		return err
	}

	now := time.Now()
	line := models.FocusLine{
		ID:        uuid.New().String(),
		Day:       day,
		Text:      c.Text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctx.Store.UpsertFocusLine(line); err != nil {
		return err
	}

	fmt.Printf("Added focus for %s: %s\n", day, c.Text)
	return nil
}

type FocusListCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *FocusListCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	day, err := utils.DayOrToday(c.Date, settings)
	if err != nil {
		return err
	}

	lines, err := ctx.Store.Provider().GetFocusLinesForDay(day)
	if err != nil {
		return err
	}

	if len(lines) == 0 {
		fmt.Printf("No focus lines for %s.\n", day)
		return nil
	}

	fmt.Printf("Focus for %s:\n", day)
	for _, line := range lines {
		status := "[ ]"
		if line.Done {
			status = "[x]"
		}
		fmt.Printf("%s %s\n", status, line.Text)
	}

	return nil
}

type FocusDoneCmd struct {
	Text string `arg:"" help:"Focus line text (or unique prefix)."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *FocusDoneCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	day, err := utils.DayOrToday(c.Date, settings)
	if err != nil {
		return err
	}

	line, err := findFocusLine(ctx, day, c.Text)
	if err != nil {
		return err
	}

	line.Done = !line.Done
	line.UpdatedAt = time.Now()
	if err := ctx.Store.UpsertFocusLine(line); err != nil {
		return err
	}

	if line.Done {
		fmt.Printf("Done: %s\n", line.Text)
	} else {
		fmt.Printf("Reopened: %s\n", line.Text)
	}
	return nil
}

type FocusDeleteCmd struct {
	Text string `arg:"" help:"Focus line text (or unique prefix)."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *FocusDeleteCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	day, err := utils.DayOrToday(c.Date, settings)
	if err != nil {
		return err
	}

	line, err := findFocusLine(ctx, day, c.Text)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteFocusLine(line.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted focus line: %s\n", line.Text)
	return nil
}

func findFocusLine(ctx *Context, day, text string) (models.FocusLine, error) {
	lines, err := ctx.Store.Provider().GetFocusLinesForDay(day)
	if err != nil {
		return models.FocusLine{}, err
	}

	var matches []models.FocusLine
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(line.Text), strings.ToLower(text)) {
			matches = append(matches, line)
		}
	}
	switch len(matches) {
	case 0:
		return models.FocusLine{}, fmt.Errorf("no focus line matching %q on %s", text, day)
	case 1:
		return matches[0], nil
	default:
		return models.FocusLine{}, fmt.Errorf("%q matches %d focus lines on %s", text, len(matches), day)
	}
}
