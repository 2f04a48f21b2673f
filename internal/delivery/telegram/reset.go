package telegram

import (
	"context"

	"go.uber.org/zap"
)

// handleResetCallback runs the two-step reset confirmation.
func (h *Handler) handleResetCallback(ctx context.Context, data callbackData) (callbackView, error) {
	switch data.param(0) {
	case resetAsk:
		kb := buildResetConfirmKeyboard()
		return callbackView{text: msgResetConfirm, markup: &kb}, nil

	case resetConfirm:
		if err := h.reset.ResetAll(ctx); err != nil {
			return callbackView{}, err
		}
		h.logger.Info("study progress reset")

		kb := buildMainKeyboard()
		return callbackView{text: msgResetDone, markup: &kb}, nil

	case resetCancel:
		kb := buildMainKeyboard()
		return callbackView{text: msgResetCancelled, markup: &kb}, nil

	default:
		h.logger.Debug("unknown reset callback", zap.String("data", data.Raw))
		return callbackView{}, nil
	}
}
