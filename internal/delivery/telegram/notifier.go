package telegram

import (
	"context"
	"fmt"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// SendReminder delivers the daily reminder to the owner chat. It only sends
// a message and leaves the UI state alone, so it is safe to call from the
// scheduler goroutine.
func (h *Handler) SendReminder(ctx context.Context, payload entities.ReminderPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := newHTMLMessage(h.ownerChatID, formatReminder(payload))
	msg.ReplyMarkup = buildMainKeyboard()

	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}
