package telegram

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/infra/scheduler"
	"github.com/aliskhannn/vocab-cards-bot/internal/repository"
	"github.com/aliskhannn/vocab-cards-bot/internal/service"
	"github.com/aliskhannn/vocab-cards-bot/internal/storage"
)

const ownerID int64 = 1001

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every sent message and edit.
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// notices returns the popup texts of answered callbacks.
func (f *fakeSender) notices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

type staticLoader []entities.Entry

func (l staticLoader) Load(context.Context) ([]entities.Entry, error) {
	out := make([]entities.Entry, len(l))
	copy(out, l)
	return out, nil
}

type nopFeedback struct{}

func (nopFeedback) Correct()   {}
func (nopFeedback) Incorrect() {}

type recordingSpeaker struct {
	spoken []string
}

func (s *recordingSpeaker) Speak(text string) { s.spoken = append(s.spoken, text) }

type testEnv struct {
	h        *Handler
	bot      *fakeSender
	store    *service.WordStore
	progress *service.ProgressTracker
	speaker  *recordingSpeaker
}

func category(s string) *string { return &s }

func testWords() []entities.Entry {
	return []entities.Entry{
		{Term: "apple", Translation: "яблоко", PartOfSpeech: "noun", Category: category("food")},
		{Term: "bread", Translation: "хлеб", PartOfSpeech: "noun", Category: category("food")},
		{Term: "run", Translation: "бежать", PartOfSpeech: "verb", Category: category("verbs")},
		{Term: "house", Translation: "дом", PartOfSpeech: "noun"},
		{Term: "read", Translation: "читать", PartOfSpeech: "verb", Category: category("verbs")},
	}
}

func newTestEnv(t *testing.T, words []entities.Entry) *testEnv {
	t.Helper()

	ctx := context.Background()
	logger := zap.NewNop()
	prefs := repository.NewPreferencesRepository(storage.NewKVStorage())

	store := service.NewWordStore(staticLoader(words), prefs, logger)
	store.Load(ctx)

	progress := service.NewProgressTracker(prefs, entities.MinDailyGoal, time.UTC, logger)
	require.NoError(t, progress.Load(ctx))

	review := service.NewReviewService(store, progress, prefs, prefs, logger)
	quiz := service.NewQuizService(store, review, nopFeedback{}, service.QuizConfig{
		AdvanceDelay: 10 * time.Millisecond,
	}, rand.New(rand.NewSource(7)), logger)
	reset := service.NewResetService(store, progress, prefs, logger)
	reminders := service.NewReminderService(
		prefs,
		scheduler.NewDailyScheduler(time.UTC, logger),
		progress,
		review,
		*entities.NewReminderSettings(20, 0),
		time.UTC,
		logger,
	)
	settings := service.NewSettingsService(progress, reminders)

	bot := &fakeSender{}
	speaker := &recordingSpeaker{}
	h := NewHandler(bot, logger, ownerID, store, review, quiz, progress, settings, reset, speaker)

	return &testEnv{h: h, bot: bot, store: store, progress: progress, speaker: speaker}
}

func command(chatID int64, text string) tgbotapi.Update {
	name := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
		},
	}
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb",
			From: &tgbotapi.User{ID: ownerID},
			Message: &tgbotapi.Message{
				MessageID: 10,
				Chat:      &tgbotapi.Chat{ID: ownerID},
			},
			Data: data,
		},
	}
}

func (e *testEnv) idOf(t *testing.T, term string) string {
	t.Helper()
	for _, entry := range e.store.Entries() {
		if entry.Term == term {
			return entry.ID
		}
	}
	t.Fatalf("no entry with term %q", term)
	return ""
}

func TestCallbackData_Codec(t *testing.T) {
	data := decodeCallback(buildQuizAnswerCallback(3, "0b7c8a52-1f5e-4c69-a3f4-0a1a0e3c9d11"))

	assert.Equal(t, actionQuiz, data.Action)
	assert.Equal(t, quizAnswer, data.param(0))
	seq, ok := data.intParam(1)
	assert.True(t, ok)
	assert.Equal(t, 3, seq)
	assert.Equal(t, "0b7c8a52-1f5e-4c69-a3f4-0a1a0e3c9d11", data.param(2))
	assert.Equal(t, "", data.param(5))

	_, ok = decodeCallback("cat:x").intParam(0)
	assert.False(t, ok)

	assert.Equal(t, actionProgress, decodeCallback(buildProgressCallback()).Action)
}

func TestCallbackData_FitsTelegramLimit(t *testing.T) {
	id := "0b7c8a52-1f5e-4c69-a3f4-0a1a0e3c9d11"
	for _, data := range []string{
		buildQuizAnswerCallback(99999, id),
		buildCardsCallback(cardsMaster, id),
		buildReminderTimeCallback(23),
	} {
		assert.LessOrEqual(t, len(data), 64, data)
	}
}

func TestHandler_IgnoresForeignChat(t *testing.T) {
	env := newTestEnv(t, testWords())

	env.h.handleUpdate(context.Background(), command(777, "/cards"))
	env.h.handleUpdate(context.Background(), tgbotapi.Update{})

	assert.Empty(t, env.bot.texts())
}

func TestHandler_Commands(t *testing.T) {
	env := newTestEnv(t, testWords())
	ctx := context.Background()

	env.h.handleUpdate(ctx, command(ownerID, "/start"))
	assert.Equal(t, msgWelcome, env.bot.last())

	env.h.handleUpdate(ctx, command(ownerID, "/unknown"))
	assert.Equal(t, msgUnknownCommand, env.bot.last())

	env.h.handleUpdate(ctx, tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: ownerID}, Text: "hello"}})
	assert.Equal(t, msgUseCommands, env.bot.last())

	env.h.handleUpdate(ctx, command(ownerID, "/cards"))
	assert.Contains(t, env.bot.last(), "<b>apple</b>")
	assert.Contains(t, env.bot.last(), "1/5")

	env.h.handleUpdate(ctx, command(ownerID, "/search"))
	assert.Equal(t, msgUseSearch, env.bot.last())

	env.h.handleUpdate(ctx, command(ownerID, "/search RE"))
	assert.Contains(t, env.bot.last(), "<b>bread</b>")
	assert.Contains(t, env.bot.last(), "1/2")

	env.h.handleUpdate(ctx, command(ownerID, "/progress"))
	assert.Contains(t, env.bot.last(), "0 / 5")
}

func TestHandler_CardNavigation(t *testing.T) {
	env := newTestEnv(t, testWords())
	ctx := context.Background()

	env.h.handleUpdate(ctx, command(ownerID, "/cards"))

	env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsPrev)))
	assert.Contains(t, env.bot.last(), "<b>read</b>")
	assert.Contains(t, env.bot.last(), "5/5")

	env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsNext)))
	assert.Contains(t, env.bot.last(), "1/5")

	env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsFlip)))
	assert.Contains(t, env.bot.last(), "яблоко")

	env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsSpeak)))
	assert.Equal(t, []string{"apple"}, env.speaker.spoken)

	// categories: all, food, verbs
	env.h.handleUpdate(ctx, callback(buildCategoryCallback(2)))
	assert.Contains(t, env.bot.last(), "<b>run</b>")
	assert.Contains(t, env.bot.last(), "1/2")

	env.h.handleUpdate(ctx, callback(buildCategoryCallback(9)))
	assert.Equal(t, msgStale, env.bot.notices()[len(env.bot.notices())-1])
}

func TestHandler_ToggleMasteredAndGoal(t *testing.T) {
	env := newTestEnv(t, testWords())
	ctx := context.Background()

	for _, term := range []string{"apple", "bread", "run", "house"} {
		env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsMaster, env.idOf(t, term))))
	}
	assert.Equal(t, 4, env.progress.State().TodayCount)
	assert.NotContains(t, env.bot.texts(), formatGoalReached(env.progress.State()))

	env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsMaster, env.idOf(t, "read"))))
	assert.Equal(t, 5, env.progress.State().TodayCount)
	assert.Contains(t, env.bot.texts(), formatGoalReached(env.progress.State()))

	env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsMaster, env.idOf(t, "read"))))
	assert.Equal(t, 4, env.progress.State().TodayCount)
	assert.Equal(t, msgUnmarkedMastered, env.bot.notices()[len(env.bot.notices())-1])

	env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsMaster, "missing")))
	assert.Equal(t, msgStale, env.bot.notices()[len(env.bot.notices())-1])
}

func TestHandler_QuizFlow(t *testing.T) {
	env := newTestEnv(t, testWords())
	ctx := context.Background()

	env.h.handleUpdate(ctx, command(ownerID, "/quiz"))
	session := env.h.quizzes.session
	require.NotNil(t, session)
	require.Equal(t, 1, session.Seq)
	assert.Len(t, session.Current.Options, 4)

	// Wrong answer: prompt goes to review and the user advances manually.
	var wrong string
	for _, opt := range session.Current.Options {
		if opt.EntryID != session.Current.Prompt.ID {
			wrong = opt.EntryID
			break
		}
	}
	prompt := session.Current.Prompt
	env.h.handleUpdate(ctx, callback(buildQuizAnswerCallback(1, wrong)))
	assert.Contains(t, env.bot.last(), "Неверно")
	assert.Equal(t, 0, session.Score)

	reviewed, ok := env.store.Get(prompt.ID)
	require.True(t, ok)
	assert.True(t, reviewed.NeedsReview)

	// A second press on the same question is stale.
	env.h.handleUpdate(ctx, callback(buildQuizAnswerCallback(1, prompt.ID)))
	assert.Equal(t, msgStale, env.bot.notices()[len(env.bot.notices())-1])

	env.h.handleUpdate(ctx, callback(buildQuizNextCallback(1)))
	require.Equal(t, 2, session.Seq)

	// Correct answer: points and automatic advance through the handler loop.
	env.h.handleUpdate(ctx, callback(buildQuizAnswerCallback(2, session.Current.Prompt.ID)))
	assert.Equal(t, entities.PointsPerCorrect, session.Score)
	assert.Contains(t, env.bot.last(), "Верно")

	select {
	case fn := <-env.h.posts:
		fn(ctx)
	case <-time.After(time.Second):
		t.Fatal("auto advance was not posted")
	}
	assert.Equal(t, 3, session.Seq)
	assert.False(t, session.Resolved)

	env.h.handleUpdate(ctx, callback(buildQuizExitCallback()))
	assert.Nil(t, env.h.quizzes.session)
	assert.Contains(t, env.bot.last(), "Очки: 10")
	assert.Contains(t, env.bot.last(), "1 из 2")

	// A fresh visit starts from zero.
	env.h.handleUpdate(ctx, callback(buildQuizStartCallback()))
	require.NotNil(t, env.h.quizzes.session)
	assert.Equal(t, 0, env.h.quizzes.session.Score)
}

func TestHandler_QuizDisabledForSmallStore(t *testing.T) {
	env := newTestEnv(t, testWords()[:3])

	env.h.handleUpdate(context.Background(), command(ownerID, "/quiz"))

	assert.Equal(t, msgQuizDisabled, env.bot.last())
	assert.Nil(t, env.h.quizzes.session)
}

func TestHandler_ResetFlow(t *testing.T) {
	env := newTestEnv(t, testWords())
	ctx := context.Background()

	env.h.handleUpdate(ctx, callback(buildCardsCallback(cardsMaster, env.idOf(t, "apple"))))
	env.h.handleUpdate(ctx, command(ownerID, "/quiz"))
	require.Equal(t, 1, env.progress.State().TodayCount)

	env.h.handleUpdate(ctx, command(ownerID, "/reset"))
	assert.Equal(t, msgResetConfirm, env.bot.last())

	env.h.handleUpdate(ctx, callback(buildResetCallback(resetCancel)))
	assert.Equal(t, msgResetCancelled, env.bot.last())
	assert.Equal(t, 1, env.progress.State().TodayCount)

	env.h.handleUpdate(ctx, callback(buildResetCallback(resetConfirm)))
	assert.Equal(t, msgResetDone, env.bot.last())
	assert.Equal(t, 0, env.progress.State().TodayCount)
	assert.Nil(t, env.h.quizzes.session)

	for _, e := range env.store.Entries() {
		assert.False(t, e.Mastered, e.Term)
		assert.False(t, e.NeedsReview, e.Term)
	}
}

func TestHandler_Settings(t *testing.T) {
	env := newTestEnv(t, testWords())
	ctx := context.Background()

	env.h.handleUpdate(ctx, callback(buildSettingsCallback(settingsGoalInc)))
	assert.Equal(t, 10, env.progress.State().DailyGoal)

	env.h.handleUpdate(ctx, callback(buildSettingsCallback(settingsGoalDec)))
	env.h.handleUpdate(ctx, callback(buildSettingsCallback(settingsGoalDec)))
	assert.Equal(t, entities.MinDailyGoal, env.progress.State().DailyGoal)
	assert.Equal(t, msgGoalLimit, env.bot.notices()[len(env.bot.notices())-1])

	env.h.handleUpdate(ctx, callback(buildSettingsCallback(settingsReminder)))
	assert.Contains(t, env.bot.last(), "в 20:00")

	env.h.handleUpdate(ctx, command(ownerID, "/remind 7:45"))
	assert.Contains(t, env.bot.last(), "в 07:45")

	env.h.handleUpdate(ctx, command(ownerID, "/remind 25:00"))
	assert.Equal(t, msgInvalidTime, env.bot.last())

	env.h.handleUpdate(ctx, callback(buildReminderTimeCallback(9)))
	assert.Contains(t, env.bot.last(), "в 09:00")
}

func TestHandler_SendReminder(t *testing.T) {
	env := newTestEnv(t, testWords())

	err := env.h.SendReminder(context.Background(), entities.ReminderPayload{TodayCount: 2, DailyGoal: 5, ReviewCount: 3})
	require.NoError(t, err)
	assert.Contains(t, env.bot.last(), "2 из 5")
	assert.Contains(t, env.bot.last(), "ждут 3")
}

func TestHandler_RunProcessesPostedWork(t *testing.T) {
	env := newTestEnv(t, testWords())
	ctx, cancel := context.WithCancel(context.Background())

	updates := make(chan tgbotapi.Update)
	done := make(chan error, 1)
	go func() { done <- env.h.Run(ctx, updates) }()

	ran := make(chan struct{})
	env.h.Post(func(context.Context) { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("posted work did not run")
	}

	close(updates)
	require.NoError(t, <-done)
	cancel()
}

func TestBuildProgressBar(t *testing.T) {
	tests := []struct {
		current, total int
		want           string
	}{
		{0, 10, "[░░░░░░░░░░]"},
		{5, 10, "[█████░░░░░]"},
		{15, 10, "[██████████]"},
		{3, 0, "[░░░░░░░░░░]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, buildProgressBar(tt.current, tt.total, 10))
	}
}
