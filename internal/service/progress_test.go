package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/repository"
	"github.com/aliskhannn/vocab-cards-bot/internal/storage"
)

func newTracker(t *testing.T, kv repository.KVStore, loc *time.Location) *ProgressTracker {
	t.Helper()
	tr := NewProgressTracker(repository.NewPreferencesRepository(kv), 20, loc, zap.NewNop())
	require.NoError(t, tr.Load(context.Background()))
	return tr
}

func TestProgressTracker_CheckNewDayIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewKVStorage()
	tr := newTracker(t, kv, time.UTC)

	morning := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	reset, err := tr.CheckNewDay(ctx, morning)
	require.NoError(t, err)
	assert.True(t, reset, "first run has no recorded date")

	require.NoError(t, tr.RecordMastered(ctx, false))
	require.NoError(t, tr.RecordMastered(ctx, false))

	for i := 0; i < 2; i++ {
		reset, err = tr.CheckNewDay(ctx, morning.Add(10*time.Hour))
		require.NoError(t, err)
		assert.False(t, reset)
		assert.Equal(t, 2, tr.State().TodayCount)
	}

	reset, err = tr.CheckNewDay(ctx, morning.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, 0, tr.State().TodayCount)

	date, _, _ := kv.Get(ctx, "last_login_date")
	assert.Equal(t, "2026-04-11", date)
}

func TestProgressTracker_CheckNewDayUsesTimezone(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("UTC+03:00", 3*3600)
	tr := newTracker(t, storage.NewKVStorage(), loc)

	// 22:30 UTC is already the next day at UTC+3.
	_, err := tr.CheckNewDay(ctx, time.Date(2026, 4, 10, 22, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-04-11", tr.State().LastRecordedDate)
}

func TestProgressTracker_RecordMasteredFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, storage.NewKVStorage(), time.UTC)

	require.NoError(t, tr.RecordMastered(ctx, true))
	assert.Equal(t, 0, tr.State().TodayCount)
}

func TestProgressTracker_StatePersists(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewKVStorage()
	tr := newTracker(t, kv, time.UTC)

	today := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	_, err := tr.CheckNewDay(ctx, today)
	require.NoError(t, err)
	require.NoError(t, tr.RecordMastered(ctx, false))
	require.NoError(t, tr.SetDailyGoal(ctx, 35))

	again := newTracker(t, kv, time.UTC)
	reset, err := again.CheckNewDay(ctx, today)
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, entities.ProgressState{DailyGoal: 35, TodayCount: 1, LastRecordedDate: "2026-04-10"}, again.State())
}

func TestProgressTracker_SetDailyGoal(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, storage.NewKVStorage(), time.UTC)

	for _, goal := range []int{0, 3, 7, 101, 200} {
		err := tr.SetDailyGoal(ctx, goal)
		require.ErrorIs(t, err, entities.ErrInvalidDailyGoal, "goal %d", goal)
	}
	assert.Equal(t, 20, tr.State().DailyGoal)

	require.NoError(t, tr.SetDailyGoal(ctx, 100))
	assert.Equal(t, 100, tr.State().DailyGoal)
}

func TestProgressTracker_AdjustDailyGoalClamps(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, storage.NewKVStorage(), time.UTC)

	goal, err := tr.AdjustDailyGoal(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 25, goal)

	goal, err = tr.AdjustDailyGoal(ctx, -100)
	require.NoError(t, err)
	assert.Equal(t, entities.MinDailyGoal, goal)

	goal, err = tr.AdjustDailyGoal(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, entities.MaxDailyGoal, goal)
}

func TestProgressTracker_InvalidStoredGoalFallsBack(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewKVStorage()
	require.NoError(t, kv.Set(ctx, "daily_goal", "13"))

	tr := newTracker(t, kv, time.UTC)
	assert.Equal(t, 20, tr.State().DailyGoal)
}

func TestProgressTracker_GoalReachedEvent(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, storage.NewKVStorage(), time.UTC)
	require.NoError(t, tr.SetDailyGoal(ctx, 5))

	var reached int
	tr.Subscribe(func(ev entities.ProgressEvent) {
		if ev.GoalReached {
			reached++
		}
	})

	for i := 0; i < 7; i++ {
		require.NoError(t, tr.RecordMastered(ctx, false))
	}

	assert.Equal(t, 1, reached, "goal is announced once")
	assert.True(t, tr.GoalReached())
}

func TestProgressTracker_SaveError(t *testing.T) {
	tr := newTracker(t, failingKV{storage.NewKVStorage()}, time.UTC)

	err := tr.RecordMastered(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, 1, tr.State().TodayCount, "in-memory state is kept")
}
