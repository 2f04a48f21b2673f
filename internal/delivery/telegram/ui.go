package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/service"
)

// reminderHoursPerRow is the width of the reminder hour picker.
const reminderHoursPerRow = 6

// buildMainKeyboard builds the entry point keyboard.
func buildMainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📇 Карточки", buildCardsCallback(cardsShow)),
			tgbotapi.NewInlineKeyboardButtonData("🎯 Квиз", buildQuizStartCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Прогресс", buildProgressCallback()),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки", buildSettingsCallback(settingsMenu)),
		),
	)
}

// buildCardKeyboard builds navigation for a single card.
func buildCardKeyboard(e entities.Entry, reviewCount int) tgbotapi.InlineKeyboardMarkup {
	masterText := "✅ Выучено"
	if e.Mastered {
		masterText = "↩️ Не выучено"
	}

	reviewText := "🔁 Повторение"
	if reviewCount > 0 {
		reviewText = fmt.Sprintf("🔁 Повторение (%d)", reviewCount)
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️", buildCardsCallback(cardsPrev)),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Перевернуть", buildCardsCallback(cardsFlip)),
			tgbotapi.NewInlineKeyboardButtonData("▶️", buildCardsCallback(cardsNext)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(masterText, buildCardsCallback(cardsMaster, e.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🔊", buildCardsCallback(cardsSpeak)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏷 Категории", buildCardsCallback(cardsCategories)),
			tgbotapi.NewInlineKeyboardButtonData(reviewText, buildCardsCallback(cardsReview)),
		),
	)
}

// buildEmptyCardsKeyboard lets the user leave an empty filter.
func buildEmptyCardsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📇 Все слова", buildCardsCallback(cardsShow, service.CategoryAll)),
			tgbotapi.NewInlineKeyboardButtonData("🏷 Категории", buildCardsCallback(cardsCategories)),
		),
	)
}

// buildCategoriesKeyboard lists categories, marking the active one.
func buildCategoriesKeyboard(categories []string, f service.FilterOptions) tgbotapi.InlineKeyboardMarkup {
	active := f.Category
	if active == "" || f.ReviewOnly {
		active = service.CategoryAll
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for i, c := range categories {
		label := c
		if c == service.CategoryAll {
			label = "Все слова"
		}
		if c == active && !f.ReviewOnly {
			label = "• " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildCategoryCallback(i)),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildQuizAnswerKeyboard builds one row per option.
func buildQuizAnswerKeyboard(s *entities.QuizSession) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(s.Current.Options)+1)
	for _, opt := range s.Current.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.Text, buildQuizAnswerCallback(s.Seq, opt.EntryID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏁 Завершить", buildQuizExitCallback()),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildQuizAnsweredKeyboard is shown after an answer. A manual "next" is
// offered only when the next question does not follow automatically.
func buildQuizAnsweredKeyboard(s *entities.QuizSession, res *entities.QuizResult) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if res.AdvanceAfter == 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Следующий ▶️", buildQuizNextCallback(s.Seq)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("🏁 Завершить", buildQuizExitCallback()))
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// buildQuizResultKeyboard builds keyboard for quiz results screen.
func buildQuizResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Новый квиз", buildQuizStartCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Мой прогресс", buildProgressCallback()),
		),
	)
}

// buildProgressKeyboard builds keyboard for progress screen.
func buildProgressKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", buildProgressCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Повторение", buildCardsCallback(cardsReview)),
			tgbotapi.NewInlineKeyboardButtonData("🎯 Квиз", buildQuizStartCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки", buildSettingsCallback(settingsMenu)),
		),
	)
}

// buildSettingsKeyboard builds main settings keyboard.
func buildSettingsKeyboard(s service.Settings) tgbotapi.InlineKeyboardMarkup {
	reminderText := "🔔 Включить напоминание"
	if s.Reminder.Enabled {
		reminderText = "🔕 Выключить напоминание"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("➖ %d", entities.DailyGoalStep), buildSettingsCallback(settingsGoalDec)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🎯 %d", s.DailyGoal), buildSettingsCallback(settingsMenu)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("➕ %d", entities.DailyGoalStep), buildSettingsCallback(settingsGoalInc)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(reminderText, buildSettingsCallback(settingsReminder)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Время: "+s.Reminder.TimeOfDay(), buildSettingsCallback(settingsTime)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Мой прогресс", buildProgressCallback()),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Сброс", buildResetCallback(resetAsk)),
		),
	)
}

// buildReminderHoursKeyboard offers every full hour of the day.
func buildReminderHoursKeyboard(current int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for hour := 0; hour < 24; hour++ {
		label := fmt.Sprintf("%02d", hour)
		if hour == current {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, buildReminderTimeCallback(hour)))
		if len(row) == reminderHoursPerRow {
			rows = append(rows, row)
			row = nil
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", buildSettingsCallback(settingsMenu)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildResetConfirmKeyboard asks for the second confirmation step.
func buildResetConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Да, сбросить", buildResetCallback(resetConfirm)),
			tgbotapi.NewInlineKeyboardButtonData("Отмена", buildResetCallback(resetCancel)),
		),
	)
}
