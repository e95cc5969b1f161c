package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daybook/internal/models"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.state {
	case StateToday:
		b.WriteString(m.renderToday())
	case StateHabits:
		b.WriteString(m.renderHabits())
	case StateJournal:
		b.WriteString(m.renderJournal())
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString(m.renderSyncLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		if SessionState(i) == m.state {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderToday() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.today) + "\n\n")

	if len(m.focus) > 0 {
		for _, line := range m.focus {
			marker := "[ ]"
			text := line.Text
			if line.Done {
				marker = "[x]"
				text = doneStyle.Render(text)
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", marker, text))
		}
		b.WriteString("\n")
	}

	if len(m.summaries) == 0 {
		b.WriteString(mutedStyle.Render("No habits yet. Add one with 'daybook habit add'.") + "\n")
		return b.String()
	}

	for i, s := range m.summaries {
		marker := "[ ]"
		if s.Today {
			marker = doneStyle.Render("[x]")
		}
		name := s.Habit.Name
		if s.Habit.Icon != "" {
			name = s.Habit.Icon + " " + name
		}
		line := fmt.Sprintf("%s %s", marker, name)
		if s.Streak.Current > 0 {
			line += mutedStyle.Render(fmt.Sprintf("  (%d day streak)", s.Streak.Current))
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}

	return b.String()
}

func (m Model) renderHabits() string {
	if len(m.summaries) == 0 {
		return mutedStyle.Render("No habits yet. Add one with 'daybook habit add'.") + "\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %-24s %8s %8s %8s\n", "Habit", "Streak", "Best", "Rate"))
	b.WriteString("  " + strings.Repeat("-", 52) + "\n")
	for i, s := range m.summaries {
		line := fmt.Sprintf("%-24s %8d %8d %7d%%",
			truncate(s.Habit.Name, 24), s.Streak.Current, s.Streak.Best, s.Rate)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m Model) renderJournal() string {
	if len(m.journal) == 0 {
		return mutedStyle.Render("No journal entries yet. Write one with 'daybook journal add'.") + "\n"
	}

	var b strings.Builder
	for i, entry := range m.journal {
		line := fmt.Sprintf("%s  %s", entry.Day, journalTitle(entry))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m Model) renderSyncLine() string {
	if m.orch == nil {
		return mutedStyle.Render("sync: off")
	}

	state := m.orch.State()
	switch state.Status {
	case models.SyncSyncing:
		return syncBusyStyle.Render(m.spinner.View() + "syncing...")
	case models.SyncError:
		return errorStyle.Render("sync error: " + state.LastError)
	default:
		if state.LastSyncedAt != nil {
			return syncIdleStyle.Render("synced " + state.LastSyncedAt.Local().Format(time.Kitchen))
		}
		return mutedStyle.Render("sync: never")
	}
}

func journalTitle(entry models.JournalEntry) string {
	if entry.Title != "" {
		return entry.Title
	}
	title := entry.Body
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	return truncate(title, 60)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
