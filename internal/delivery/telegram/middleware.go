package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
			return nil
		}
		return nil
	}
}

// fromOwner accepts only updates from the configured chat.
func (h *Handler) fromOwner(update tgbotapi.Update) bool {
	var chatID int64
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	default:
		h.logger.Debug("update without message and callback")
		return false
	}

	if chatID != h.ownerChatID {
		h.logger.Debug("ignoring update from foreign chat", zap.Int64("chat_id", chatID))
		return false
	}
	return true
}
