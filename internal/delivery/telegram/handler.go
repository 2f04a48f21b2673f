package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// postQueueSize bounds closures waiting for the handler loop.
const postQueueSize = 64

// Handler owns the chat UI state. Every state change happens on the
// goroutine running Run; other goroutines hand work over with Post.
type Handler struct {
	bot         Sender
	logger      *zap.Logger
	ownerChatID int64

	review   ReviewService
	quiz     QuizService
	progress ProgressService
	settings SettingsService
	reset    ResetService
	speaker  Speaker

	posts chan func(ctx context.Context)

	cards   *cardsView
	quizzes *quizView
	unsub   []func()
}

func NewHandler(
	bot Sender,
	logger *zap.Logger,
	ownerChatID int64,
	store WordStore,
	review ReviewService,
	quiz QuizService,
	progress ProgressService,
	settings SettingsService,
	reset ResetService,
	speaker Speaker,
) *Handler {
	h := &Handler{
		bot:         bot,
		logger:      logger,
		ownerChatID: ownerChatID,
		review:      review,
		quiz:        quiz,
		progress:    progress,
		settings:    settings,
		reset:       reset,
		speaker:     speaker,
		posts:       make(chan func(ctx context.Context), postQueueSize),
		cards:       newCardsView(),
		quizzes:     &quizView{},
	}

	h.unsub = append(h.unsub,
		store.Subscribe(h.onStoreChanged),
		progress.Subscribe(h.onProgressChanged),
	)

	return h
}

// Run processes updates and posted work until ctx is done or updates is closed.
func (h *Handler) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")
	defer func() {
		for _, fn := range h.unsub {
			fn()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		case fn := <-h.posts:
			fn(ctx)
		}
	}
}

// Post schedules fn to run on the handler loop. It never blocks; when the
// queue is full fn is dropped.
func (h *Handler) Post(fn func(ctx context.Context)) {
	select {
	case h.posts <- fn:
	default:
		h.logger.Warn("handler queue full, dropping task")
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if !h.fromOwner(update) {
		return
	}

	h.checkNewDay(ctx)

	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID

	if !update.Message.IsCommand() {
		msg := newHTMLMessage(chatID, msgUseCommands)
		h.send(msg)
		return
	}

	args := update.Message.CommandArguments()

	switch update.Message.Command() {
	case "start":
		h.send(withKeyboard(newHTMLMessage(chatID, msgWelcome), buildMainKeyboard()))

	case "help":
		h.send(newHTMLMessage(chatID, msgHelp))

	case "cards":
		_ = h.withErrorHandling(h.cardsCommand())(ctx, chatID)

	case "review":
		_ = h.withErrorHandling(h.reviewCommand())(ctx, chatID)

	case "categories":
		_ = h.withErrorHandling(h.categoriesCommand())(ctx, chatID)

	case "search":
		_ = h.withErrorHandling(h.searchCommand(args))(ctx, chatID)

	case "quiz":
		_ = h.withErrorHandling(h.quizCommand())(ctx, chatID)

	case "progress":
		_ = h.withErrorHandling(h.progressCommand())(ctx, chatID)

	case "settings":
		_ = h.withErrorHandling(h.settingsCommand())(ctx, chatID)

	case "remind":
		_ = h.withErrorHandling(h.remindCommand(args))(ctx, chatID)

	case "reset":
		h.send(withKeyboard(newHTMLMessage(chatID, msgResetConfirm), buildResetConfirmKeyboard()))

	default:
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
	}
}

// checkNewDay runs the day rollover on user activity.
func (h *Handler) checkNewDay(ctx context.Context) {
	if _, err := h.progress.CheckNewDay(ctx, h.progress.Today()); err != nil {
		h.logger.Error("failed to check new day", zap.Error(err))
	}
}

// CheckNewDay posts the day rollover to the handler loop.
func (h *Handler) CheckNewDay() {
	h.Post(h.checkNewDay)
}

func (h *Handler) onStoreChanged(ev entities.StoreEvent) {
	h.cards.invalidate()
	if ev.Kind == entities.StoreReset {
		h.quizzes.close()
	}
}

func (h *Handler) onProgressChanged(ev entities.ProgressEvent) {
	if !ev.GoalReached {
		return
	}
	h.send(newHTMLMessage(h.ownerChatID, formatGoalReached(ev.State)))
}

func (h *Handler) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	m, err := h.bot.Send(c)
	if err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return m, false
	}
	return m, true
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newHTMLMessage(chatID, err)
	h.send(msg)
}

// answerCallback removes the button spinner, optionally showing text.
func (h *Handler) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}
