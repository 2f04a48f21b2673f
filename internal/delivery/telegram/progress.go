package telegram

import (
	"context"
	"fmt"
	"strings"
)

func (h *Handler) progressCommand() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		view := h.progressView()
		msg := newHTMLMessage(chatID, view.text)
		msg.ReplyMarkup = view.markup
		h.send(msg)
		return nil
	}
}

func (h *Handler) progressView() callbackView {
	kb := buildProgressKeyboard()
	return callbackView{
		text:   formatProgress(h.progress.State(), h.review.Stats()),
		markup: &kb,
	}
}

// buildProgressBar creates ASCII progress bar.
func buildProgressBar(current, total, length int) string {
	if total <= 0 {
		return "[" + strings.Repeat("░", length) + "]"
	}

	filled := int(float64(current) / float64(total) * float64(length))
	filled = max(0, min(filled, length))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
	return fmt.Sprintf("[%s]", bar)
}
