package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// Persisted keys. The layout is flat and unversioned.
const (
	keyDailyGoal           = "daily_goal"
	keyTodayCount          = "today_count"
	keyLastLoginDate       = "last_login_date"
	keyNotificationEnabled = "notification_enabled"
	keyNotificationTime    = "notification_time"
	keyMasteredWords       = "mastered_words"
	keyReviewWords         = "review_words"
	keyLastCategory        = "last_category"
	keyLastViewedWordID    = "last_viewed_word_id"
)

var ErrMalformedValue = errors.New("malformed stored value")

// KVStore is a flat string key/value store.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// PreferencesRepository reads and writes typed values on top of a KVStore.
// Writes are synchronous and unbatched.
type PreferencesRepository struct {
	kv KVStore
}

func NewPreferencesRepository(kv KVStore) *PreferencesRepository {
	return &PreferencesRepository{kv: kv}
}

// LoadProgress reads the progress scalars. Missing values fall back to defaults.
func (r *PreferencesRepository) LoadProgress(ctx context.Context, defaultGoal int) (*entities.ProgressState, error) {
	p := entities.NewProgressState()
	p.DailyGoal = defaultGoal

	goal, ok, err := r.getInt(ctx, keyDailyGoal)
	if err != nil {
		return nil, err
	}
	if ok {
		p.DailyGoal = goal
	}

	count, ok, err := r.getInt(ctx, keyTodayCount)
	if err != nil {
		return nil, err
	}
	if ok && count > 0 {
		p.TodayCount = count
	}

	date, _, err := r.kv.Get(ctx, keyLastLoginDate)
	if err != nil {
		return nil, fmt.Errorf("load last login date: %w", err)
	}
	p.LastRecordedDate = date

	return p, nil
}

// SaveProgress writes all progress scalars.
func (r *PreferencesRepository) SaveProgress(ctx context.Context, p *entities.ProgressState) error {
	if err := r.SaveDailyGoal(ctx, p.DailyGoal); err != nil {
		return err
	}
	if err := r.SaveTodayCount(ctx, p.TodayCount); err != nil {
		return err
	}
	return r.SaveLastLoginDate(ctx, p.LastRecordedDate)
}

func (r *PreferencesRepository) SaveDailyGoal(ctx context.Context, goal int) error {
	return r.kv.Set(ctx, keyDailyGoal, strconv.Itoa(goal))
}

func (r *PreferencesRepository) SaveTodayCount(ctx context.Context, count int) error {
	return r.kv.Set(ctx, keyTodayCount, strconv.Itoa(count))
}

func (r *PreferencesRepository) SaveLastLoginDate(ctx context.Context, date string) error {
	return r.kv.Set(ctx, keyLastLoginDate, date)
}

// LoadFlags returns the persisted mastered and needs-review term lists.
// The lists are decoded independently: a malformed one comes back nil and
// is reported in err, the other one is still returned.
func (r *PreferencesRepository) LoadFlags(ctx context.Context) (mastered, review []string, err error) {
	mastered, masteredErr := r.getStrings(ctx, keyMasteredWords)
	review, reviewErr := r.getStrings(ctx, keyReviewWords)

	return mastered, review, errors.Join(masteredErr, reviewErr)
}

// SaveFlags replaces both term lists.
func (r *PreferencesRepository) SaveFlags(ctx context.Context, mastered, review []string) error {
	if err := r.setStrings(ctx, keyMasteredWords, mastered); err != nil {
		return err
	}
	return r.setStrings(ctx, keyReviewWords, review)
}

// ClearStudyState drops both term lists and the last-viewed pointers.
func (r *PreferencesRepository) ClearStudyState(ctx context.Context) error {
	err := r.kv.Delete(ctx, keyMasteredWords, keyReviewWords, keyLastViewedWordID, keyLastCategory)
	if err != nil {
		return fmt.Errorf("clear study state: %w", err)
	}
	return nil
}

// LoadReminder reads reminder settings; defaults are used for missing values.
// The time of day is stored as a unix timestamp and decoded in loc.
func (r *PreferencesRepository) LoadReminder(
	ctx context.Context, defaults entities.ReminderSettings, loc *time.Location,
) (*entities.ReminderSettings, error) {
	rem := defaults

	enabled, ok, err := r.getBool(ctx, keyNotificationEnabled)
	if err != nil {
		return nil, err
	}
	if ok {
		rem.Enabled = enabled
	}

	raw, ok, err := r.kv.Get(ctx, keyNotificationTime)
	if err != nil {
		return nil, fmt.Errorf("load notification time: %w", err)
	}
	if ok {
		ts, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyNotificationTime, ErrMalformedValue)
		}
		rem.SetFromTimestamp(int64(ts), loc)
	}

	return &rem, nil
}

// SaveReminder writes the enabled flag and the time of day.
func (r *PreferencesRepository) SaveReminder(ctx context.Context, rem *entities.ReminderSettings, now time.Time) error {
	if err := r.kv.Set(ctx, keyNotificationEnabled, strconv.FormatBool(rem.Enabled)); err != nil {
		return err
	}
	ts := rem.Timestamp(now)
	return r.kv.Set(ctx, keyNotificationTime, strconv.FormatInt(ts, 10))
}

func (r *PreferencesRepository) LastCategory(ctx context.Context) (string, error) {
	v, _, err := r.kv.Get(ctx, keyLastCategory)
	return v, err
}

func (r *PreferencesRepository) SaveLastCategory(ctx context.Context, category string) error {
	return r.kv.Set(ctx, keyLastCategory, category)
}

func (r *PreferencesRepository) LastViewed(ctx context.Context) (string, error) {
	v, _, err := r.kv.Get(ctx, keyLastViewedWordID)
	return v, err
}

func (r *PreferencesRepository) SaveLastViewed(ctx context.Context, entryID string) error {
	return r.kv.Set(ctx, keyLastViewedWordID, entryID)
}

func (r *PreferencesRepository) getInt(ctx context.Context, key string) (int, bool, error) {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, ErrMalformedValue)
	}

	return v, true, nil
}

func (r *PreferencesRepository) getBool(ctx context.Context, key string) (bool, bool, error) {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, false, err
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, ErrMalformedValue)
	}

	return v, true, nil
}

func (r *PreferencesRepository) getStrings(ctx context.Context, key string) ([]string, error) {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("%s: %w", key, ErrMalformedValue)
	}

	return list, nil
}

func (r *PreferencesRepository) setStrings(ctx context.Context, key string, list []string) error {
	if list == nil {
		list = []string{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return r.kv.Set(ctx, key, string(data))
}
