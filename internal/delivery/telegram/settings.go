package telegram

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

func (h *Handler) settingsCommand() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		view := h.settingsView()
		msg := newHTMLMessage(chatID, view.text)
		msg.ReplyMarkup = view.markup
		h.send(msg)
		return nil
	}
}

func (h *Handler) settingsView() callbackView {
	s := h.settings.Get()
	kb := buildSettingsKeyboard(s)
	return callbackView{text: formatSettings(s), markup: &kb}
}

// remindCommand sets the reminder time from "HH:MM".
func (h *Handler) remindCommand(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		args = strings.TrimSpace(args)
		if args == "" {
			h.send(newHTMLMessage(chatID, msgUseRemind))
			return nil
		}

		t, err := time.Parse("15:04", args)
		if err != nil {
			h.logger.Debug("invalid reminder time", zap.String("input", args))
			h.send(newHTMLMessage(chatID, msgInvalidTime))
			return nil
		}

		if err := h.settings.SetReminderTime(ctx, t.Hour(), t.Minute()); err != nil {
			return err
		}

		return h.settingsCommand()(ctx, chatID)
	}
}

func (h *Handler) handleSettingsCallback(ctx context.Context, data callbackData) (callbackView, error) {
	switch data.param(0) {
	case settingsMenu:
		return h.settingsView(), nil

	case settingsGoalInc, settingsGoalDec:
		before := h.settings.Get().DailyGoal

		var (
			goal int
			err  error
		)
		if data.param(0) == settingsGoalInc {
			goal, err = h.settings.IncreaseGoal(ctx)
		} else {
			goal, err = h.settings.DecreaseGoal(ctx)
		}
		if err != nil {
			return callbackView{}, err
		}

		if goal == before {
			return callbackView{notice: msgGoalLimit}, nil
		}
		return h.settingsView(), nil

	case settingsReminder:
		if _, err := h.settings.ToggleReminder(ctx); err != nil {
			return callbackView{}, err
		}
		return h.settingsView(), nil

	case settingsTime:
		hour, ok := data.intParam(1)
		if !ok {
			kb := buildReminderHoursKeyboard(h.settings.Get().Reminder.Hour)
			return callbackView{text: msgChooseTime, markup: &kb}, nil
		}

		if err := h.settings.SetReminderTime(ctx, hour, 0); err != nil {
			return callbackView{}, err
		}
		return h.settingsView(), nil

	default:
		h.logger.Debug("unknown settings callback", zap.String("data", data.Raw))
		return callbackView{}, nil
	}
}
