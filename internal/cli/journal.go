package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/utils"
)

type JournalCmd struct {
	Add    JournalAddCmd    `cmd:"" help:"Write a journal entry."`
	List   JournalListCmd   `cmd:"" help:"List journal entries."`
	Show   JournalShowCmd   `cmd:"" help:"Show a journal entry."`
	Delete JournalDeleteCmd `cmd:"" help:"Delete a journal entry (soft delete)."`
}

type JournalAddCmd struct {
	Title string `help:"Entry title."`
	Body  string `help:"Entry body. Opens an editor form when omitted."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *JournalAddCmd) Run(ctx *Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	day, err := utils.DayOrToday(c.Date, settings)
	if err != nil {
		return err
	}

	title := c.Title
	body := c.Body
	if body == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Title").
					Value(&title),
				huh.NewText().
					Title("Entry").
					Value(&body).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("entry body cannot be empty")
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	now := time.Now()
	entry := models.JournalEntry{
		ID:        uuid.New().String(),
		Day:       day,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctx.Store.AddJournalEntry(entry); err != nil {
		return err
	}

	fmt.Printf("Added journal entry for %s (ID: %s)\n", day, entry.ID)
	return nil
}

type JournalListCmd struct {
	Date string `help:"Only show entries for this date (YYYY-MM-DD)."`
}

func (c *JournalListCmd) Run(ctx *Context) error {
	var entries []models.JournalEntry
	var err error
	if c.Date != "" {
		if _, err := utils.ParseDay(c.Date); err != nil {
			return err
		}
		entries, err = ctx.Store.Provider().GetJournalEntriesForDay(c.Date)
	} else {
		entries, err = ctx.Store.Provider().GetAllJournalEntries()
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No journal entries found.")
		return nil
	}

	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = firstLine(entry.Body)
		}
		fmt.Printf("%s  %s  (%s)\n", entry.Day, title, entry.ID[:8])
	}

	return nil
}

type JournalShowCmd struct {
	ID string `arg:"" help:"Entry ID (or unique prefix)."`
}

func (c *JournalShowCmd) Run(ctx *Context) error {
	entry, err := findJournalEntry(ctx, c.ID)
	if err != nil {
		return err
	}

	if entry.Title != "" {
		fmt.Printf("%s - %s\n\n", entry.Day, entry.Title)
	} else {
		fmt.Printf("%s\n\n", entry.Day)
	}
	fmt.Println(entry.Body)
	return nil
}

type JournalDeleteCmd struct {
	ID string `arg:"" help:"Entry ID (or unique prefix)."`
}

func (c *JournalDeleteCmd) Run(ctx *Context) error {
	entry, err := findJournalEntry(ctx, c.ID)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteJournalEntry(entry.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted journal entry from %s\n", entry.Day)
	return nil
}

// findJournalEntry resolves an entry by full ID or unique prefix.
func findJournalEntry(ctx *Context, id string) (models.JournalEntry, error) {
	if entry, err := ctx.Store.Provider().GetJournalEntry(id); err == nil {
		return entry, nil
	}

	entries, err := ctx.Store.Provider().GetAllJournalEntries()
	if err != nil {
		return models.JournalEntry{}, err
	}

	var matches []models.JournalEntry
	for _, entry := range entries {
		if strings.HasPrefix(entry.ID, id) {
			matches = append(matches, entry)
		}
	}
	switch len(matches) {
	case 0:
		return models.JournalEntry{}, fmt.Errorf("journal entry %q not found", id)
	case 1:
		return matches[0], nil
	default:
		return models.JournalEntry{}, fmt.Errorf("journal entry ID %q is ambiguous (%d matches)", id, len(matches))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}
