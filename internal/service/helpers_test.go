package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/repository"
	"github.com/aliskhannn/vocab-cards-bot/internal/storage"
)

type fakeLoader struct {
	words []entities.Entry
	err   error
	calls int
}

func (f *fakeLoader) Load(_ context.Context) ([]entities.Entry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.Entry, len(f.words))
	copy(out, f.words)
	return out, nil
}

type fakeFeedback struct {
	correct   int
	incorrect int
}

func (f *fakeFeedback) Correct()   { f.correct++ }
func (f *fakeFeedback) Incorrect() { f.incorrect++ }

type fakeScheduler struct {
	mu          sync.Mutex
	jobs        map[string]scheduledJob
	permissions int
	scheduleErr error
}

type scheduledJob struct {
	hour, minute int
	fn           func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: make(map[string]scheduledJob)}
}

func (f *fakeScheduler) RequestPermission(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permissions++
	return false, nil
}

func (f *fakeScheduler) ScheduleDaily(id string, hour, minute int, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return f.scheduleErr
	}
	f.jobs[id] = scheduledJob{hour: hour, minute: minute, fn: fn}
	return nil
}

func (f *fakeScheduler) Cancel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, id)
}

func (f *fakeScheduler) job(id string) (scheduledJob, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	return j, ok
}

func (f *fakeScheduler) permissionCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.permissions
}

type fakeNotifier struct {
	mu       sync.Mutex
	payloads []entities.ReminderPayload
}

func (f *fakeNotifier) SendReminder(_ context.Context, p entities.ReminderPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return nil
}

// failingKV fails every write.
type failingKV struct {
	*storage.KVStorage
}

func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

type failingDeleteKV struct{ *storage.KVStorage }

func (failingDeleteKV) Delete(context.Context, ...string) error { return errors.New("read-only store") }

func strPtr(s string) *string { return &s }

// fixtureWords is a small dataset with mixed-case terms and categories.
func fixtureWords() []entities.Entry {
	return []entities.Entry{
		{Term: "Apple", Translation: "яблоко", PartOfSpeech: "noun", Example: "An apple a day.", Category: strPtr("food")},
		{Term: "run", Translation: "бежать", PartOfSpeech: "verb", Example: "I run daily.", Category: strPtr("verbs")},
		{Term: "house", Translation: "Дом", PartOfSpeech: "noun", Example: "My house is small.", Category: strPtr("home")},
		{Term: "pineapple", Translation: "ананас", PartOfSpeech: "noun", Example: "Pineapple is sweet.", Category: strPtr("food")},
		{Term: "read", Translation: "читать", PartOfSpeech: "verb", Example: "I read books."},
	}
}

type testApp struct {
	kv       *storage.KVStorage
	prefs    *repository.PreferencesRepository
	store    *WordStore
	progress *ProgressTracker
	review   *ReviewService
	quiz     *QuizService
	reset    *ResetService
	feedback *fakeFeedback
}

func newTestApp(t *testing.T, words []entities.Entry) *testApp {
	t.Helper()
	return newTestAppWithKV(t, words, storage.NewKVStorage())
}

func newTestAppWithKV(t *testing.T, words []entities.Entry, kv *storage.KVStorage) *testApp {
	t.Helper()

	ctx := context.Background()
	logger := zap.NewNop()
	prefs := repository.NewPreferencesRepository(kv)

	store := NewWordStore(&fakeLoader{words: words}, prefs, logger)
	store.Load(ctx)

	progress := NewProgressTracker(prefs, entities.DefaultDailyGoal, time.UTC, logger)
	require.NoError(t, progress.Load(ctx))

	review := NewReviewService(store, progress, prefs, prefs, logger)
	feedback := &fakeFeedback{}
	quiz := NewQuizService(store, review, feedback, QuizConfig{}, rand.New(rand.NewSource(42)), logger)

	return &testApp{
		kv:       kv,
		prefs:    prefs,
		store:    store,
		progress: progress,
		review:   review,
		quiz:     quiz,
		reset:    NewResetService(store, progress, prefs, logger),
		feedback: feedback,
	}
}

func (a *testApp) idOf(t *testing.T, term string) string {
	t.Helper()
	for _, e := range a.store.Entries() {
		if e.Term == term {
			return e.ID
		}
	}
	t.Fatalf("no entry with term %q", term)
	return ""
}

func requireFlagInvariant(t *testing.T, entries []entities.Entry) {
	t.Helper()
	for _, e := range entries {
		if e.Mastered {
			require.False(t, e.NeedsReview, "mastered entry %q must not need review", e.Term)
		}
	}
}
