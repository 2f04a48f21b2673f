package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// callbackView is what a button press changes on screen.
type callbackView struct {
	text   string // new message text, empty leaves the message untouched
	markup *tgbotapi.InlineKeyboardMarkup
	notice string // short popup shown to the user
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := decodeCallback(cb.Data)

	var (
		view callbackView
		err  error
	)

	switch data.Action {
	case actionCards:
		view, err = h.handleCardsCallback(ctx, data)
	case actionCategory:
		view, err = h.handleCategoryCallback(ctx, data)
	case actionQuiz:
		view, err = h.handleQuizCallback(ctx, cb, data)
	case actionProgress:
		view = h.progressView()
	case actionSettings:
		view, err = h.handleSettingsCallback(ctx, data)
	case actionReset:
		view, err = h.handleResetCallback(ctx, data)
	default:
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
	}

	if err != nil {
		h.logger.Error("callback error",
			zap.String("data", cb.Data),
			zap.Error(err),
		)
		h.answerCallback(cb, msgInternalError)
		return
	}

	if view.text != "" {
		h.edit(cb.Message.Chat.ID, cb.Message.MessageID, view)
	}

	// Remove the user's "clock".
	h.answerCallback(cb, view.notice)
}

// edit replaces the message text and keyboard in place.
func (h *Handler) edit(chatID int64, msgID int, view callbackView) {
	edit := newHTMLEdit(chatID, msgID, view.text)
	if view.markup != nil {
		edit.ReplyMarkup = view.markup
	}
	h.send(edit)
}
