// Package metrics derives per-habit streaks and rolling completion rates from
// the completion collection. Everything here is pure: no caching, no state,
// every call rescans the slice it is given.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
)

// Streak describes a habit's run of consecutive completed days.
type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// dayNumber collapses a calendar day to an integer so that consecutive days
// differ by exactly 1 regardless of DST.
func dayNumber(t time.Time) int {
	return int(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// completedDays returns the distinct completed days for one habit,
// newest first, as day numbers.
func completedDays(habitID string, completions []models.HabitCompletion) []int {
	seen := make(map[int]bool)
	var days []int
	for _, c := range completions {
		if c.HabitID != habitID || !c.Completed || c.DeletedAt != nil {
			continue
		}
		d, err := time.Parse(constants.DateFormat, c.Day)
		if err != nil {
			continue
		}
		n := dayNumber(d)
		if !seen[n] {
			seen[n] = true
			days = append(days, n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))
	return days
}

// HabitStreak computes the current and best streak for a habit as of "today".
//
// The walk goes newest to oldest: a run grows while entries are exactly one
// calendar day apart and resets on any gap. The newest run only counts as
// Current when it touches today or yesterday; an older run still contributes
// to Best.
func HabitStreak(habitID string, completions []models.HabitCompletion, today time.Time) Streak {
	days := completedDays(habitID, completions)
	if len(days) == 0 {
		return Streak{}
	}

	todayNum := dayNumber(today)

	best := 1
	run := 1
	firstRun := 1
	firstRunDone := false
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
		} else {
			if !firstRunDone {
				firstRun = run
				firstRunDone = true
			}
			run = 1
		}
		if run > best {
			best = run
		}
	}
	if !firstRunDone {
		firstRun = run
	}

	current := 0
	if days[0] == todayNum || days[0] == todayNum-1 {
		current = firstRun
	}

	return Streak{Current: current, Best: best}
}

// CompletionRate returns the percentage of the last windowDays calendar days
// on which the habit was completed, rounded to the nearest integer.
//
// Days with no record at all count as incomplete: the divisor is always
// windowDays, never the number of existing records.
func CompletionRate(habitID string, completions []models.HabitCompletion, windowDays int, today time.Time) int {
	if windowDays <= 0 {
		return 0
	}

	todayNum := dayNumber(today)
	startNum := todayNum - windowDays

	count := 0
	for _, d := range completedDays(habitID, completions) {
		if d >= startNum && d <= todayNum {
			count++
		}
	}

	return int(math.Round(float64(count) / float64(windowDays) * 100))
}

// HabitSummary bundles the derived numbers the dashboard shows per habit.
type HabitSummary struct {
	Habit  models.Habit `json:"habit"`
	Streak Streak       `json:"streak"`
	Rate   int          `json:"rate"`
	Today  bool         `json:"today"`
}

// Summarize computes summaries for every habit over a shared completion list.
func Summarize(habits []models.Habit, completions []models.HabitCompletion, windowDays int, today time.Time) []HabitSummary {
	todayStr := today.Format(constants.DateFormat)

	summaries := make([]HabitSummary, 0, len(habits))
	for _, h := range habits {
		s := HabitSummary{
			Habit:  h,
			Streak: HabitStreak(h.ID, completions, today),
			Rate:   CompletionRate(h.ID, completions, windowDays, today),
		}
		for _, c := range completions {
			if c.HabitID == h.ID && c.Day == todayStr && c.Completed && c.DeletedAt == nil {
				s.Today = true
				break
			}
		}
		summaries = append(summaries, s)
	}
	return summaries
}
