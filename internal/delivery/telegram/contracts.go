package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/service"
)

// Sender is the part of the Bot API the handler uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type WordStore interface {
	Subscribe(fn func(entities.StoreEvent)) func()
}

type ReviewService interface {
	Categories() []string
	Filter(opts service.FilterOptions) []entities.Entry
	ToggleMastered(ctx context.Context, id string) (entities.Entry, error)
	Stats() service.ReviewStats
	LastCategory(ctx context.Context) string
	SetLastCategory(ctx context.Context, category string) error
	LastViewed(ctx context.Context) (entities.Entry, bool)
	SetLastViewed(ctx context.Context, id string) error
}

type QuizService interface {
	Available() bool
	StartSession() *entities.QuizSession
	Next(session *entities.QuizSession) error
	Evaluate(ctx context.Context, session *entities.QuizSession, selectedEntryID string) (*entities.QuizResult, error)
}

type ProgressService interface {
	State() entities.ProgressState
	Today() time.Time
	CheckNewDay(ctx context.Context, today time.Time) (bool, error)
	Subscribe(fn func(entities.ProgressEvent)) func()
}

type SettingsService interface {
	Get() service.Settings
	IncreaseGoal(ctx context.Context) (int, error)
	DecreaseGoal(ctx context.Context) (int, error)
	ToggleReminder(ctx context.Context) (entities.ReminderSettings, error)
	SetReminderTime(ctx context.Context, hour, minute int) error
}

type ResetService interface {
	ResetAll(ctx context.Context) error
}

// Speaker pronounces a word without blocking.
type Speaker interface {
	Speak(text string)
}
