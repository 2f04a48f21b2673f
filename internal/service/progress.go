package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// ProgressTracker owns the daily count and goal.
type ProgressTracker struct {
	repo        ProgressRepository
	defaultGoal int
	loc         *time.Location
	validate    *validator.Validate
	logger      *zap.Logger

	mu    sync.RWMutex
	state entities.ProgressState
	subs  subscribers[entities.ProgressEvent]
}

func NewProgressTracker(
	repo ProgressRepository,
	defaultGoal int,
	loc *time.Location,
	logger *zap.Logger,
) *ProgressTracker {
	if !entities.ValidDailyGoal(defaultGoal) {
		defaultGoal = entities.DefaultDailyGoal
	}
	if loc == nil {
		loc = time.UTC
	}

	v := validator.New()
	_ = v.RegisterValidation("daily_goal", func(fl validator.FieldLevel) bool {
		return entities.ValidDailyGoal(int(fl.Field().Int()))
	})

	return &ProgressTracker{
		repo:        repo,
		defaultGoal: defaultGoal,
		loc:         loc,
		validate:    v,
		logger:      logger,
		state:       entities.ProgressState{DailyGoal: defaultGoal},
	}
}

// Load reads the persisted state. A stored goal outside the allowed range
// is replaced by the default.
func (t *ProgressTracker) Load(ctx context.Context) error {
	p, err := t.repo.LoadProgress(ctx, t.defaultGoal)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	if !entities.ValidDailyGoal(p.DailyGoal) {
		t.logger.Warn("stored daily goal out of range, using default",
			zap.Int("stored", p.DailyGoal),
			zap.Int("default", t.defaultGoal),
		)
		p.DailyGoal = t.defaultGoal
	}

	t.mu.Lock()
	t.state = *p
	t.mu.Unlock()

	return nil
}

// Today returns the current time in the tracker's timezone.
func (t *ProgressTracker) Today() time.Time {
	return time.Now().In(t.loc)
}

// CheckNewDay zeroes the daily count when today differs from the last
// recorded date. Calling it again on the same day changes nothing.
func (t *ProgressTracker) CheckNewDay(ctx context.Context, today time.Time) (bool, error) {
	t.mu.Lock()
	reset := t.state.CheckNewDay(today.In(t.loc))
	state := t.state
	t.mu.Unlock()

	if !reset {
		return false, nil
	}

	t.logger.Info("new day started", zap.String("date", state.LastRecordedDate))

	if err := t.repo.SaveTodayCount(ctx, state.TodayCount); err != nil {
		return true, fmt.Errorf("save today count: %w", err)
	}
	if err := t.repo.SaveLastLoginDate(ctx, state.LastRecordedDate); err != nil {
		return true, fmt.Errorf("save last login date: %w", err)
	}

	t.subs.notify(entities.ProgressEvent{State: state})
	return true, nil
}

// RecordMastered counts a mastery transition. wasAlreadyMastered is the
// flag value before the toggle.
func (t *ProgressTracker) RecordMastered(ctx context.Context, wasAlreadyMastered bool) error {
	t.mu.Lock()
	before := t.state.GoalReached()
	t.state.RecordMastered(wasAlreadyMastered)
	state := t.state
	t.mu.Unlock()

	if err := t.repo.SaveTodayCount(ctx, state.TodayCount); err != nil {
		return fmt.Errorf("save today count: %w", err)
	}

	t.subs.notify(entities.ProgressEvent{
		State:       state,
		GoalReached: !before && state.GoalReached(),
	})
	return nil
}

// ResetAll zeroes today's count.
func (t *ProgressTracker) ResetAll(ctx context.Context) error {
	t.mu.Lock()
	t.state.Reset()
	state := t.state
	t.mu.Unlock()

	if err := t.repo.SaveTodayCount(ctx, 0); err != nil {
		return fmt.Errorf("save today count: %w", err)
	}

	t.subs.notify(entities.ProgressEvent{State: state})
	return nil
}

// SetDailyGoal changes the goal. It must be within 5..100 and a multiple of 5.
func (t *ProgressTracker) SetDailyGoal(ctx context.Context, goal int) error {
	if err := t.validate.Var(goal, "daily_goal"); err != nil {
		return fmt.Errorf("%w: got %d", entities.ErrInvalidDailyGoal, goal)
	}

	t.mu.Lock()
	t.state.DailyGoal = goal
	state := t.state
	t.mu.Unlock()

	if err := t.repo.SaveDailyGoal(ctx, goal); err != nil {
		return fmt.Errorf("save daily goal: %w", err)
	}

	t.subs.notify(entities.ProgressEvent{State: state})
	return nil
}

// AdjustDailyGoal moves the goal by delta, clamped to the allowed range.
func (t *ProgressTracker) AdjustDailyGoal(ctx context.Context, delta int) (int, error) {
	goal := t.State().DailyGoal + delta
	goal = max(entities.MinDailyGoal, min(entities.MaxDailyGoal, goal))

	if err := t.SetDailyGoal(ctx, goal); err != nil {
		return 0, err
	}
	return goal, nil
}

func (t *ProgressTracker) State() entities.ProgressState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *ProgressTracker) GoalReached() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.GoalReached()
}

// Subscribe registers fn for progress changes and returns a function that removes it.
func (t *ProgressTracker) Subscribe(fn func(entities.ProgressEvent)) func() {
	return t.subs.add(fn)
}
