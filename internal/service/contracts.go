package service

import (
	"context"
	"time"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

type DatasetLoader interface {
	Load(ctx context.Context) ([]entities.Entry, error)
}

type FlagsRepository interface {
	LoadFlags(ctx context.Context) (mastered, review []string, err error)
	SaveFlags(ctx context.Context, mastered, review []string) error
}

type ProgressRepository interface {
	LoadProgress(ctx context.Context, defaultGoal int) (*entities.ProgressState, error)
	SaveDailyGoal(ctx context.Context, goal int) error
	SaveTodayCount(ctx context.Context, count int) error
	SaveLastLoginDate(ctx context.Context, date string) error
}

type PointerRepository interface {
	LastCategory(ctx context.Context) (string, error)
	SaveLastCategory(ctx context.Context, category string) error
	LastViewed(ctx context.Context) (string, error)
	SaveLastViewed(ctx context.Context, entryID string) error
}

type StudyStateRepository interface {
	ClearStudyState(ctx context.Context) error
}

type ReminderRepository interface {
	LoadReminder(ctx context.Context, defaults entities.ReminderSettings, loc *time.Location) (*entities.ReminderSettings, error)
	SaveReminder(ctx context.Context, rem *entities.ReminderSettings, now time.Time) error
}

// DailyScheduler fires a callback once a day at a fixed local time.
type DailyScheduler interface {
	RequestPermission(ctx context.Context) (bool, error)
	ScheduleDaily(id string, hour, minute int, fn func()) error
	Cancel(id string)
}

// ReminderNotifier delivers reminder messages to the user.
type ReminderNotifier interface {
	SendReminder(ctx context.Context, payload entities.ReminderPayload) error
}

// Feedback plays answer feedback. Calls must not block.
type Feedback interface {
	Correct()
	Incorrect()
}
