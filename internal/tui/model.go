package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/metrics"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/store"
	"github.com/julianstephens/daybook/internal/syncer"
	"github.com/julianstephens/daybook/internal/utils"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateHabits
	StateJournal
)

var tabNames = []string{"Today", "Habits", "Journal"}

type refreshMsg struct {
	today     string
	summaries []metrics.HabitSummary
	focus     []models.FocusLine
	journal   []models.JournalEntry
	err       error
}

type tickMsg time.Time

type syncDoneMsg struct{ err error }

type Model struct {
	store *store.LocalStore
	// orch is nil when sync is disabled; the dashboard then hides sync state.
	orch *syncer.Orchestrator

	state   SessionState
	cursor  int
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	width   int

	today     string
	summaries []metrics.HabitSummary
	focus     []models.FocusLine
	journal   []models.JournalEntry
	err       error
}

func New(localStore *store.LocalStore, orch *syncer.Orchestrator) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		store:   localStore,
		orch:    orch,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick(), m.spinner.Tick)
}

// refresh reloads everything the dashboard shows from the local replica.
func (m Model) refresh() tea.Cmd {
	localStore := m.store
	return func() tea.Msg {
		provider := localStore.Provider()

		settings, err := provider.GetSettings()
		if err != nil {
			return refreshMsg{err: err}
		}
		today, err := utils.TodayFromSettings(settings)
		if err != nil {
			return refreshMsg{err: err}
		}

		habits, err := provider.GetAllHabits(false, false)
		if err != nil {
			return refreshMsg{err: err}
		}
		completions, err := provider.GetAllCompletions()
		if err != nil {
			return refreshMsg{err: err}
		}
		focus, err := provider.GetFocusLinesForDay(today)
		if err != nil {
			return refreshMsg{err: err}
		}
		journal, err := provider.GetAllJournalEntries()
		if err != nil {
			return refreshMsg{err: err}
		}

		window := settings.RateWindowDays
		if window <= 0 {
			window = constants.DefaultRateWindowDays
		}
		now, err := utils.NowInTimezone(settings.Timezone)
		if err != nil {
			return refreshMsg{err: err}
		}

		return refreshMsg{
			today:     today,
			summaries: metrics.Summarize(habits, completions, window, now),
			focus:     focus,
			journal:   journal,
		}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		m.err = msg.err
		if msg.err == nil {
			m.today = msg.today
			m.summaries = msg.summaries
			m.focus = msg.focus
			m.journal = msg.journal
			m.clampCursor()
		}
		return m, nil

	case tickMsg:
		// Sync status lives on the orchestrator; poll it so the footer stays live.
		return m, m.tick()

	case syncDoneMsg:
		m.err = msg.err
		return m, m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.state = SessionState((int(m.state) + 1) % len(tabNames))
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.state = SessionState((int(m.state) + len(tabNames) - 1) % len(tabNames))
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if m.state == StateToday || m.state == StateHabits {
			return m, m.toggleSelected()
		}
		return m, nil

	case key.Matches(msg, m.keys.Sync):
		return m, m.syncNow()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}

	return m, nil
}

func (m *Model) clampCursor() {
	max := 0
	switch m.state {
	case StateToday, StateHabits:
		max = len(m.summaries) - 1
	case StateJournal:
		max = len(m.journal) - 1
	}
	if max < 0 {
		max = 0
	}
	if m.cursor > max {
		m.cursor = max
	}
}

// toggleSelected flips today's completion for the habit under the cursor.
func (m Model) toggleSelected() tea.Cmd {
	if m.cursor >= len(m.summaries) {
		return nil
	}
	habit := m.summaries[m.cursor].Habit
	localStore := m.store
	today := m.today

	return func() tea.Msg {
		now := time.Now()
		entry, err := localStore.Provider().GetCompletion(habit.ID, today)
		if err != nil {
			entry = models.HabitCompletion{
				ID:        uuid.New().String(),
				HabitID:   habit.ID,
				Day:       today,
				Completed: true,
				CreatedAt: now,
				UpdatedAt: now,
			}
		} else {
			entry.Completed = !entry.Completed
			entry.UpdatedAt = now
		}
		if err := localStore.UpsertCompletion(entry); err != nil {
			return refreshMsg{err: err}
		}
		return syncDoneMsg{}
	}
}

func (m Model) syncNow() tea.Cmd {
	if m.orch == nil {
		return nil
	}
	orch := m.orch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return syncDoneMsg{err: orch.Push(ctx)}
	}
}
