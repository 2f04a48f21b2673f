package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// DayWatcher calls a function when a new calendar day starts.
type DayWatcher struct {
	scheduler *gocron.Scheduler
	logger    *zap.Logger
}

func NewDayWatcher(loc *time.Location, logger *zap.Logger) *DayWatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &DayWatcher{
		scheduler: gocron.NewScheduler(loc),
		logger:    logger,
	}
}

// OnNewDay registers fn to run every day at midnight.
func (w *DayWatcher) OnNewDay(fn func()) error {
	_, err := w.scheduler.Every(1).Day().At("00:00").SingletonMode().Do(fn)
	if err != nil {
		return fmt.Errorf("schedule day rollover: %w", err)
	}
	return nil
}

// Start begins running jobs in the background.
func (w *DayWatcher) Start() {
	w.scheduler.StartAsync()
	w.logger.Info("day watcher started")
}

func (w *DayWatcher) Stop() {
	w.scheduler.Stop()
	w.logger.Info("day watcher stopped")
}

// Jobs returns the number of registered callbacks.
func (w *DayWatcher) Jobs() int {
	return w.scheduler.Len()
}
