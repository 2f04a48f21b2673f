package entities

import (
	"errors"
	"time"
)

// DateLayout is the layout of ProgressState.LastRecordedDate.
const DateLayout = "2006-01-02"

// Daily goal bounds. The goal is adjusted in steps of DailyGoalStep.
const (
	MinDailyGoal     = 5
	MaxDailyGoal     = 100
	DailyGoalStep    = 5
	DefaultDailyGoal = 20
)

var ErrInvalidDailyGoal = errors.New("daily goal must be between 5 and 100 in steps of 5")

// ProgressState tracks how many words were mastered today against the daily goal.
type ProgressState struct {
	DailyGoal        int    // target of newly mastered words per day
	TodayCount       int    // words mastered since LastRecordedDate started
	LastRecordedDate string // calendar date in DateLayout
}

// NewProgressState creates a progress state with the default goal.
func NewProgressState() *ProgressState {
	return &ProgressState{
		DailyGoal: DefaultDailyGoal,
	}
}

// CheckNewDay resets TodayCount when today's date differs from the last
// recorded one. It reports whether a reset happened.
func (p *ProgressState) CheckNewDay(today time.Time) bool {
	date := today.Format(DateLayout)
	if date == p.LastRecordedDate {
		return false
	}

	p.TodayCount = 0
	p.LastRecordedDate = date
	return true
}

// RecordMastered updates TodayCount for a mastery transition.
// A word becoming mastered increments the count, a word losing mastery
// decrements it, never below zero.
func (p *ProgressState) RecordMastered(wasAlreadyMastered bool) {
	if !wasAlreadyMastered {
		p.TodayCount++
		return
	}

	if p.TodayCount > 0 {
		p.TodayCount--
	}
}

// Reset zeroes today's count.
func (p *ProgressState) Reset() {
	p.TodayCount = 0
}

// GoalReached reports whether today's count met the daily goal.
func (p *ProgressState) GoalReached() bool {
	return p.DailyGoal > 0 && p.TodayCount >= p.DailyGoal
}

// Percentage returns today's completion of the daily goal, capped at 100.
func (p *ProgressState) Percentage() float64 {
	if p.DailyGoal <= 0 {
		return 0
	}

	pct := float64(p.TodayCount) / float64(p.DailyGoal) * 100
	return min(pct, 100)
}

// ValidDailyGoal reports whether goal is within bounds and aligned to the step.
func ValidDailyGoal(goal int) bool {
	return goal >= MinDailyGoal && goal <= MaxDailyGoal && goal%DailyGoalStep == 0
}
