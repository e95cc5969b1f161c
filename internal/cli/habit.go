package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/metrics"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/utils"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Mark    HabitMarkCmd    `cmd:"" help:"Toggle a habit's completion for a day."`
	Today   HabitTodayCmd   `cmd:"" help:"Show today's habit status."`
	Log     HabitLogCmd     `cmd:"" help:"Show habit log (ASCII history)."`
	Stats   HabitStatsCmd   `cmd:"" help:"Show streaks and completion rates."`
	Archive HabitArchiveCmd `cmd:"" help:"Archive a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	Restore HabitRestoreCmd `cmd:"" help:"Restore a deleted habit."`
}

type HabitAddCmd struct {
	Name string `arg:"" help:"Habit name."`
	Icon string `help:"Optional icon or emoji shown on the dashboard."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	// Habit names double as the CLI handle, so keep them unique
	if _, err := ctx.FindHabit(c.Name); err == nil {
		return fmt.Errorf("habit with name %q already exists", c.Name)
	}

	now := time.Now()
	habit := models.Habit{
		ID:        uuid.New().String(),
		Name:      c.Name,
		Icon:      c.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s\n", c.Name)
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.Provider().GetAllHabits(c.Archived, c.Deleted)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, habit := range habits {
		status := ""
		if habit.DeletedAt != nil {
			status = " [DELETED]"
		} else if habit.ArchivedAt != nil {
			status = " [ARCHIVED]"
		}
		if habit.Icon != "" {
			fmt.Printf("%s %s%s\n", habit.Icon, habit.Name, status)
		} else {
			fmt.Printf("%s%s\n", habit.Name, status)
		}
	}

	return nil
}

type HabitMarkCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Note string `help:"Optional note for this entry." default:""`
}

func (c *HabitMarkCmd) Run(ctx *Context) error {
	habit, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	day, err := utils.DayOrToday(c.Date, settings)
	if err != nil {
		return err
	}

	now := time.Now()
	existing, err := ctx.Store.Provider().GetCompletion(habit.ID, day)
	if err == nil {
		// Record exists: toggle it in place rather than deleting, so the
		// flip replicates as an update.
		existing.Completed = !existing.Completed
		existing.UpdatedAt = now
		if c.Note != "" {
			existing.Note = c.Note
		}
		if err := ctx.Store.UpsertCompletion(existing); err != nil {
			return err
		}
		if existing.Completed {
			fmt.Printf("Marked habit %q for %s\n", c.Name, day)
		} else {
			fmt.Printf("Unmarked habit %q for %s\n", c.Name, day)
		}
		return nil
	}

	entry := models.HabitCompletion{
		ID:        uuid.New().String(),
		HabitID:   habit.ID,
		Day:       day,
		Completed: true,
		Note:      c.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctx.Store.UpsertCompletion(entry); err != nil {
		return err
	}

	fmt.Printf("Marked habit %q for %s\n", c.Name, day)
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.Provider().GetAllHabits(false, false)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today, err := ctx.Today()
	if err != nil {
		return err
	}

	fmt.Printf("Habits for %s:\n\n", today)
	done := 0
	for _, habit := range habits {
		status := "[ ]"
		entry, err := ctx.Store.Provider().GetCompletion(habit.ID, today)
		if err == nil && entry.Completed {
			status = "[x]"
			done++
		}
		fmt.Printf("%s %s\n", status, habit.Name)
	}

	fmt.Printf("\nCompleted: %d/%d\n", done, len(habits))
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.Provider().GetAllHabits(false, false)
	if err != nil {
		return err
	}

	var selected []models.Habit
	if c.Habit != "" {
		for _, h := range habits {
			if h.Name == c.Habit {
				selected = []models.Habit{h}
				break
			}
		}
		if len(selected) == 0 {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
	} else {
		selected = habits
	}

	if len(selected) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	endDay := time.Now()
	startDay := endDay.AddDate(0, 0, -(c.Days - 1))

	fmt.Printf("Habit log (last %d days):\n\n", c.Days)

	const maxNameLen = 20
	fmt.Print(strings.Repeat(" ", maxNameLen))
	for i := 0; i < c.Days; i++ {
		day := startDay.AddDate(0, 0, i)
		fmt.Printf(" %5s", day.Format("01/02"))
	}
	fmt.Println()

	fmt.Print(strings.Repeat("-", maxNameLen))
	for i := 0; i < c.Days; i++ {
		fmt.Print("------")
	}
	fmt.Println()

	for _, habit := range selected {
		name := habit.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		} else {
			name = name + strings.Repeat(" ", maxNameLen-len(name))
		}
		fmt.Print(name)

		entries, err := ctx.Store.Provider().GetCompletionsForHabit(
			habit.ID,
			startDay.Format(constants.DateFormat),
			endDay.Format(constants.DateFormat),
		)
		if err != nil {
			return err
		}

		doneMap := make(map[string]bool)
		for _, entry := range entries {
			if entry.Completed {
				doneMap[entry.Day] = true
			}
		}

		for i := 0; i < c.Days; i++ {
			day := startDay.AddDate(0, 0, i).Format(constants.DateFormat)
			if doneMap[day] {
				fmt.Print("  x   ")
			} else {
				fmt.Print("  .   ")
			}
		}
		fmt.Println()
	}

	return nil
}

type HabitStatsCmd struct {
	Habit  string `help:"Show stats for specific habit only."`
	Window int    `help:"Completion rate window in days (default: from settings)." default:"0"`
}

func (c *HabitStatsCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.Provider().GetAllHabits(false, false)
	if err != nil {
		return err
	}

	if c.Habit != "" {
		var match []models.Habit
		for _, h := range habits {
			if h.Name == c.Habit {
				match = []models.Habit{h}
				break
			}
		}
		if len(match) == 0 {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
		habits = match
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	window := c.Window
	if window <= 0 {
		window = settings.RateWindowDays
	}
	if window <= 0 {
		window = constants.DefaultRateWindowDays
	}

	completions, err := ctx.Store.Provider().GetAllCompletions()
	if err != nil {
		return err
	}

	now, err := utils.NowInTimezone(settings.Timezone)
	if err != nil {
		return err
	}

	fmt.Printf("%-20s %8s %8s %8s\n", "Habit", "Streak", "Best", fmt.Sprintf("%dd rate", window))
	for _, summary := range metrics.Summarize(habits, completions, window, now) {
		fmt.Printf("%-20s %8d %8d %7d%%\n",
			summary.Habit.Name, summary.Streak.Current, summary.Streak.Best, summary.Rate)
	}

	return nil
}

type HabitArchiveCmd struct {
	Name      string `arg:"" help:"Habit name to archive."`
	Unarchive bool   `help:"Unarchive the habit instead."`
}

func (c *HabitArchiveCmd) Run(ctx *Context) error {
	habit, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}

	if c.Unarchive {
		habit.ArchivedAt = nil
		habit.UpdatedAt = time.Now()
		if err := ctx.Store.UpdateHabit(habit); err != nil {
			return err
		}
		fmt.Printf("Unarchived habit: %s\n", c.Name)
		return nil
	}

	if err := ctx.Store.ArchiveHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Archived habit: %s\n", c.Name)
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	habit, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", c.Name)
	fmt.Println("(This is a soft delete. Use 'daybook habit restore' to undo)")
	return nil
}

type HabitRestoreCmd struct {
	Name string `arg:"" help:"Habit name to restore."`
}

func (c *HabitRestoreCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.Provider().GetAllHabits(true, true)
	if err != nil {
		return err
	}

	var habit *models.Habit
	for i, h := range habits {
		if h.Name == c.Name && h.DeletedAt != nil {
			habit = &habits[i]
			break
		}
	}

	if habit == nil {
		return fmt.Errorf("deleted habit %q not found", c.Name)
	}

	if err := ctx.Store.RestoreHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Restored habit: %s\n", c.Name)
	return nil
}
