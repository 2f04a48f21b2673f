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

func TestResetService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewKVStorage()
	app := newTestAppWithKV(t, fixtureWords(), kv)
	require.Equal(t, 5, app.store.Len())
	require.Equal(t, 20, app.progress.State().DailyGoal)

	_, err := app.progress.CheckNewDay(ctx, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	for _, term := range []string{"Apple", "run", "house"} {
		_, err := app.review.ToggleMastered(ctx, app.idOf(t, term))
		require.NoError(t, err)
	}
	_, err = app.review.MarkNeedsReview(ctx, app.idOf(t, "read"))
	require.NoError(t, err)
	require.NoError(t, app.review.SetLastCategory(ctx, "food"))
	require.NoError(t, app.review.SetLastViewed(ctx, app.idOf(t, "run")))

	assert.Equal(t, 3, app.progress.State().TodayCount)

	var events []entities.StoreEventKind
	app.store.Subscribe(func(ev entities.StoreEvent) { events = append(events, ev.Kind) })

	require.NoError(t, app.reset.ResetAll(ctx))

	assert.Equal(t, 0, app.progress.State().TodayCount)
	assert.Equal(t, 20, app.progress.State().DailyGoal, "goal survives a reset")
	for _, e := range app.store.Entries() {
		assert.False(t, e.Mastered, e.Term)
		assert.False(t, e.NeedsReview, e.Term)
	}
	assert.Equal(t, []entities.StoreEventKind{entities.StoreReset}, events)

	mastered, review, err := app.prefs.LoadFlags(ctx)
	require.NoError(t, err)
	assert.Empty(t, mastered)
	assert.Empty(t, review)
	assert.Equal(t, CategoryAll, app.review.LastCategory(ctx))

	// nothing comes back after a restart
	reloaded := newTestAppWithKV(t, fixtureWords(), kv)
	assert.Equal(t, ReviewStats{Total: 5}, reloaded.review.Stats())
	assert.Equal(t, 0, reloaded.progress.State().TodayCount)
}

func TestResetService_EmptyStore(t *testing.T) {
	app := newTestApp(t, nil)

	require.NoError(t, app.reset.ResetAll(context.Background()))
	assert.Equal(t, 0, app.progress.State().TodayCount)
}

func TestResetService_RunsEveryStepWhenClearFails(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewKVStorage()
	app := newTestAppWithKV(t, fixtureWords(), kv)

	_, err := app.review.ToggleMastered(ctx, app.idOf(t, "Apple"))
	require.NoError(t, err)
	_, err = app.review.MarkNeedsReview(ctx, app.idOf(t, "run"))
	require.NoError(t, err)
	require.Equal(t, 1, app.progress.State().TodayCount)

	broken := repository.NewPreferencesRepository(failingDeleteKV{kv})
	reset := NewResetService(app.store, app.progress, broken, zap.NewNop())

	require.Error(t, reset.ResetAll(ctx))

	for _, e := range app.store.Entries() {
		assert.False(t, e.Mastered, e.Term)
		assert.False(t, e.NeedsReview, e.Term)
	}
	assert.Equal(t, 0, app.progress.State().TodayCount)

	raw, ok, err := kv.Get(ctx, "today_count")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0", raw)
}
