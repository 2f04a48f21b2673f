package entities

import (
	"fmt"
	"time"
)

// DailyReminderID identifies the single repeating study reminder.
const DailyReminderID = "daily-reminder"

// ReminderSettings holds the daily reminder configuration.
type ReminderSettings struct {
	Enabled bool
	Hour    int // 0-23, local time
	Minute  int // 0-59
}

// NewReminderSettings creates a disabled reminder at the given default time.
func NewReminderSettings(hour, minute int) *ReminderSettings {
	return &ReminderSettings{
		Hour:   hour,
		Minute: minute,
	}
}

// Validate checks the time of day.
func (r ReminderSettings) Validate() error {
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("invalid reminder time %02d:%02d", r.Hour, r.Minute)
	}
	return nil
}

// TimeOfDay formats the reminder time as HH:MM.
func (r ReminderSettings) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// Timestamp encodes the time of day as unix seconds of that time on the
// day of ref, in ref's location.
func (r ReminderSettings) Timestamp(ref time.Time) int64 {
	t := time.Date(ref.Year(), ref.Month(), ref.Day(), r.Hour, r.Minute, 0, 0, ref.Location())
	return t.Unix()
}

// SetFromTimestamp restores hour and minute from a stored timestamp.
func (r *ReminderSettings) SetFromTimestamp(ts int64, loc *time.Location) {
	t := time.Unix(ts, 0).In(loc)
	r.Hour = t.Hour()
	r.Minute = t.Minute()
}

// ReminderPayload is the content of one reminder notification.
type ReminderPayload struct {
	TodayCount  int
	DailyGoal   int
	ReviewCount int
}
