// Package scheduler runs time-based jobs: the daily study reminder and the
// midnight day rollover.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DailyScheduler runs named callbacks once a day at a fixed local time.
// Scheduling an id that already exists replaces the previous job.
type DailyScheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewDailyScheduler(loc *time.Location, logger *zap.Logger) *DailyScheduler {
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{l: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	return &DailyScheduler{
		cron:    c,
		loc:     loc,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// RequestPermission always grants: the bot may message its owner chat at any time.
func (s *DailyScheduler) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *DailyScheduler) ScheduleDaily(id string, hour, minute int, fn func()) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old)
		delete(s.entries, id)
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	entryID, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", id, err)
	}
	s.entries[id] = entryID

	s.logger.Info("daily job scheduled",
		zap.String("id", id),
		zap.String("spec", spec),
	)
	return nil
}

func (s *DailyScheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[id]
	if !ok {
		return
	}
	s.cron.Remove(entryID)
	delete(s.entries, id)

	s.logger.Info("daily job cancelled", zap.String("id", id))
}

// NextRun returns the first run of job id after t.
func (s *DailyScheduler) NextRun(id string, t time.Time) (time.Time, bool) {
	s.mu.Lock()
	entryID, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}

	entry := s.cron.Entry(entryID)
	if !entry.Valid() {
		return time.Time{}, false
	}
	return entry.Schedule.Next(t.In(s.loc)), true
}

func (s *DailyScheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started")
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *DailyScheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.logger.Info("cron scheduler stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
