package service

import (
	"context"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// Settings is what the settings screen shows.
type Settings struct {
	DailyGoal int
	Reminder  entities.ReminderSettings
}

// SettingsService groups the user-adjustable preferences.
type SettingsService struct {
	progress  *ProgressTracker
	reminders *ReminderService
}

func NewSettingsService(progress *ProgressTracker, reminders *ReminderService) *SettingsService {
	return &SettingsService{progress: progress, reminders: reminders}
}

func (s *SettingsService) Get() Settings {
	return Settings{
		DailyGoal: s.progress.State().DailyGoal,
		Reminder:  s.reminders.Settings(),
	}
}

// IncreaseGoal raises the daily goal by one step.
func (s *SettingsService) IncreaseGoal(ctx context.Context) (int, error) {
	return s.progress.AdjustDailyGoal(ctx, entities.DailyGoalStep)
}

// DecreaseGoal lowers the daily goal by one step.
func (s *SettingsService) DecreaseGoal(ctx context.Context) (int, error) {
	return s.progress.AdjustDailyGoal(ctx, -entities.DailyGoalStep)
}

func (s *SettingsService) ToggleReminder(ctx context.Context) (entities.ReminderSettings, error) {
	return s.reminders.Toggle(ctx)
}

func (s *SettingsService) SetReminderTime(ctx context.Context, hour, minute int) error {
	return s.reminders.SetTime(ctx, hour, minute)
}
