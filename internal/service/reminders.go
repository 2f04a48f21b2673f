package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// sendTimeout bounds delivery of one reminder.
const sendTimeout = 30 * time.Second

var ErrNotifierNotSet = errors.New("notifier not initialized")

// ReminderService manages the daily study reminder.
type ReminderService struct {
	repo      ReminderRepository
	scheduler DailyScheduler
	progress  *ProgressTracker
	review    *ReviewService
	defaults  entities.ReminderSettings
	loc       *time.Location
	logger    *zap.Logger

	mu       sync.RWMutex
	settings entities.ReminderSettings
	notifier ReminderNotifier
}

// NewReminderService creates a new reminder service.
func NewReminderService(
	repo ReminderRepository,
	scheduler DailyScheduler,
	progress *ProgressTracker,
	review *ReviewService,
	defaults entities.ReminderSettings,
	loc *time.Location,
	logger *zap.Logger,
) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		repo:      repo,
		scheduler: scheduler,
		progress:  progress,
		review:    review,
		defaults:  defaults,
		loc:       loc,
		logger:    logger,
		settings:  defaults,
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (s *ReminderService) SetNotifier(notifier ReminderNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = notifier
}

// Restore loads persisted settings and re-schedules the reminder if it was on.
func (s *ReminderService) Restore(ctx context.Context) error {
	rem, err := s.repo.LoadReminder(ctx, s.defaults, s.loc)
	if err != nil {
		return fmt.Errorf("load reminder: %w", err)
	}

	s.mu.Lock()
	s.settings = *rem
	s.mu.Unlock()

	if !rem.Enabled {
		return nil
	}

	if err := s.scheduler.ScheduleDaily(entities.DailyReminderID, rem.Hour, rem.Minute, s.fire); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	s.logger.Info("daily reminder restored", zap.String("time", rem.TimeOfDay()))
	return nil
}

// Enable turns the reminder on at hour:minute, replacing any scheduled one.
func (s *ReminderService) Enable(ctx context.Context, hour, minute int) error {
	rem := entities.ReminderSettings{Enabled: true, Hour: hour, Minute: minute}
	if err := rem.Validate(); err != nil {
		return err
	}

	s.requestPermission(ctx)

	if err := s.scheduler.ScheduleDaily(entities.DailyReminderID, hour, minute, s.fire); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	return s.save(ctx, rem)
}

// Disable cancels the reminder.
func (s *ReminderService) Disable(ctx context.Context) error {
	s.scheduler.Cancel(entities.DailyReminderID)

	rem := s.Settings()
	rem.Enabled = false
	return s.save(ctx, rem)
}

// SetTime changes the reminder time. An enabled reminder is re-scheduled.
func (s *ReminderService) SetTime(ctx context.Context, hour, minute int) error {
	rem := s.Settings()
	if rem.Enabled {
		return s.Enable(ctx, hour, minute)
	}

	rem.Hour, rem.Minute = hour, minute
	if err := rem.Validate(); err != nil {
		return err
	}
	return s.save(ctx, rem)
}

// Toggle flips the reminder using the stored time.
func (s *ReminderService) Toggle(ctx context.Context) (entities.ReminderSettings, error) {
	rem := s.Settings()

	var err error
	if rem.Enabled {
		err = s.Disable(ctx)
	} else {
		err = s.Enable(ctx, rem.Hour, rem.Minute)
	}

	return s.Settings(), err
}

func (s *ReminderService) Settings() entities.ReminderSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Payload builds the reminder content from the current progress.
func (s *ReminderService) Payload() entities.ReminderPayload {
	state := s.progress.State()
	return entities.ReminderPayload{
		TodayCount:  state.TodayCount,
		DailyGoal:   state.DailyGoal,
		ReviewCount: s.review.Stats().NeedsReview,
	}
}

func (s *ReminderService) save(ctx context.Context, rem entities.ReminderSettings) error {
	s.mu.Lock()
	s.settings = rem
	s.mu.Unlock()

	if err := s.repo.SaveReminder(ctx, &rem, time.Now().In(s.loc)); err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}

	s.logger.Info("reminder settings saved",
		zap.Bool("enabled", rem.Enabled),
		zap.String("time", rem.TimeOfDay()),
	)
	return nil
}

// requestPermission asks for delivery permission in the background.
// The answer does not affect scheduling.
func (s *ReminderService) requestPermission(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		granted, err := s.scheduler.RequestPermission(ctx)
		if err != nil {
			s.logger.Debug("reminder permission request failed", zap.Error(err))
			return
		}
		s.logger.Debug("reminder permission", zap.Bool("granted", granted))
	}()
}

// fire is the scheduled callback.
func (s *ReminderService) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := s.send(ctx); err != nil {
		s.logger.Error("failed to send reminder", zap.Error(err))
	}
}

func (s *ReminderService) send(ctx context.Context) error {
	s.mu.RLock()
	notifier := s.notifier
	s.mu.RUnlock()

	if notifier == nil {
		return ErrNotifierNotSet
	}

	payload := s.Payload()
	if err := notifier.SendReminder(ctx, payload); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	s.logger.Info("reminder sent",
		zap.Int("today_count", payload.TodayCount),
		zap.Int("daily_goal", payload.DailyGoal),
		zap.Int("review_count", payload.ReviewCount),
	)
	return nil
}
