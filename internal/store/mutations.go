package store

import (
	"github.com/julianstephens/daybook/internal/models"
)

// Every mutator commits to durable storage first, then fires the change hook.
// The hook must never fire for a failed write.

func (ls *LocalStore) AddHabit(habit models.Habit) error {
	if err := ls.provider.AddHabit(habit); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) UpdateHabit(habit models.Habit) error {
	if err := ls.provider.UpdateHabit(habit); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) ArchiveHabit(id string) error {
	if err := ls.provider.ArchiveHabit(id); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) DeleteHabit(id string) error {
	if err := ls.provider.DeleteHabit(id); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) RestoreHabit(id string) error {
	if err := ls.provider.RestoreHabit(id); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) UpsertCompletion(entry models.HabitCompletion) error {
	if err := ls.provider.UpsertCompletion(entry); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) DeleteCompletion(id string) error {
	if err := ls.provider.DeleteCompletion(id); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) AddJournalEntry(entry models.JournalEntry) error {
	if err := ls.provider.AddJournalEntry(entry); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) UpdateJournalEntry(entry models.JournalEntry) error {
	if err := ls.provider.UpdateJournalEntry(entry); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) DeleteJournalEntry(id string) error {
	if err := ls.provider.DeleteJournalEntry(id); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) UpsertFocusLine(line models.FocusLine) error {
	if err := ls.provider.UpsertFocusLine(line); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) DeleteFocusLine(id string) error {
	if err := ls.provider.DeleteFocusLine(id); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) UpsertInterest(area models.InterestArea) error {
	if err := ls.provider.UpsertInterest(area); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) DeleteInterest(id string) error {
	if err := ls.provider.DeleteInterest(id); err != nil {
		return err
	}
	ls.notify()
	return nil
}

func (ls *LocalStore) SaveSettings(settings models.Settings) error {
	if err := ls.provider.SaveSettings(settings); err != nil {
		return err
	}
	ls.notify()
	return nil
}
