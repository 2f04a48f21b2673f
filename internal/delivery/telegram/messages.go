// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/service"
)

// Error messages.
const (
	msgInternalError  = "Что‑то пошло не так. Попробуйте позже."
	msgUnknownCommand = "Неизвестная команда. Список команд: /help"
	msgUseCommands    = "Я понимаю только команды. Список команд: /help"
	msgUseSearch      = "Используйте: /search слово"
	msgUseRemind      = "Используйте: /remind 09:30"
	msgInvalidTime    = "Некорректное время. Пример: /remind 09:30"
	msgStale          = "Это сообщение устарело."
	msgQuizDisabled   = "Для квиза нужно хотя бы 4 слова в словаре."
	msgQuizFinished   = "Квиз закрыт. Начните новый: /quiz"
	msgGoalLimit      = "Достигнута граница цели."
)

// Informational messages.
const (
	msgWelcome = "<b>Vocab Cards</b>\n\n" +
		"Карточки для запоминания слов: листайте, переворачивайте, отмечайте выученные " +
		"и проверяйте себя в квизе.\n\n" +
		"Начните с /cards или откройте /help."

	msgHelp = "<b>Команды</b>\n\n" +
		"/cards — карточки\n" +
		"/review — слова на повторение\n" +
		"/categories — выбрать категорию\n" +
		"/search слово — поиск по слову или переводу\n" +
		"/quiz — квиз\n" +
		"/progress — прогресс за сегодня\n" +
		"/settings — цель и напоминание\n" +
		"/remind ЧЧ:ММ — время напоминания\n" +
		"/reset — сбросить весь прогресс"

	msgNoWords          = "Словарь пуст. Слова появятся после загрузки набора данных."
	msgNoMatches        = "Ничего не найдено. Попробуйте другую категорию или запрос."
	msgChooseCategory   = "Выберите категорию:"
	msgMarkedMastered   = "✅ Слово выучено"
	msgUnmarkedMastered = "Отметка снята"
	msgChooseTime       = "Выберите час напоминания или отправьте /remind ЧЧ:ММ:"
	msgResetConfirm     = "⚠️ <b>Сбросить весь прогресс?</b>\n\n" +
		"Будут удалены отметки «выучено» и «на повторение», счётчик за сегодня " +
		"и последняя открытая карточка. Отменить это действие нельзя."
	msgResetDone      = "Прогресс сброшен."
	msgResetCancelled = "Сброс отменён."
)

// formatFilter describes the active card filter.
func formatFilter(f service.FilterOptions) string {
	var parts []string
	switch {
	case f.ReviewOnly:
		parts = append(parts, "🔁 на повторение")
	case f.Category != "" && f.Category != service.CategoryAll:
		parts = append(parts, "🏷 "+esc(f.Category))
	default:
		parts = append(parts, "🏷 все слова")
	}
	if f.Search != "" {
		parts = append(parts, "🔎 «"+esc(f.Search)+"»")
	}
	return strings.Join(parts, " · ")
}

func formatCardHeader(e entities.Entry, idx, total int, f service.FilterOptions) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<i>%s</i>  %d/%d", formatFilter(f), idx+1, total)
	switch {
	case e.Mastered:
		sb.WriteString("  ✅")
	case e.NeedsReview:
		sb.WriteString("  🔁")
	}
	sb.WriteString("\n\n")
	return sb.String()
}

// formatCardFront renders the term side of a card.
func formatCardFront(e entities.Entry, idx, total int, f service.FilterOptions) string {
	var sb strings.Builder
	sb.WriteString(formatCardHeader(e, idx, total, f))
	fmt.Fprintf(&sb, "<b>%s</b>", esc(e.Term))
	if e.PartOfSpeech != "" {
		fmt.Fprintf(&sb, "\n<i>%s</i>", esc(e.PartOfSpeech))
	}
	return sb.String()
}

// formatCardBack renders the translation side of a card.
func formatCardBack(e entities.Entry, idx, total int, f service.FilterOptions) string {
	var sb strings.Builder
	sb.WriteString(formatCardHeader(e, idx, total, f))
	fmt.Fprintf(&sb, "<b>%s</b> — %s", esc(e.Term), esc(e.Translation))
	if e.PartOfSpeech != "" {
		fmt.Fprintf(&sb, "\n<i>%s</i>", esc(e.PartOfSpeech))
	}
	if e.Example != "" {
		fmt.Fprintf(&sb, "\n\n📝 %s", esc(e.Example))
	}
	if c := e.CategoryLabel(); c != "" {
		fmt.Fprintf(&sb, "\n🏷 %s", esc(c))
	}
	return sb.String()
}

// formatQuestion renders the current quiz question.
func formatQuestion(s *entities.QuizSession) string {
	return fmt.Sprintf(
		"<b>Вопрос %d</b>  ·  Очки: %d\n\nКак переводится <b>%s</b>?",
		s.Seq,
		s.Score,
		esc(s.Current.Prompt.Term),
	)
}

// formatAnswer renders the question together with the outcome of an answer.
func formatAnswer(s *entities.QuizSession, res *entities.QuizResult) string {
	var sb strings.Builder
	sb.WriteString(formatQuestion(s))
	sb.WriteString("\n\n")

	if res.IsCorrect {
		fmt.Fprintf(&sb, "✅ Верно! +%d", entities.PointsPerCorrect)
	} else {
		fmt.Fprintf(&sb, "❌ Неверно. Правильный ответ: <b>%s</b>", esc(res.Correct.Text))
		if res.MarkedReview {
			sb.WriteString("\n🔁 Слово добавлено на повторение.")
		}
	}

	fmt.Fprintf(&sb, "\n\nОчки: %d  ·  Верных: %d из %d", res.Score, s.Correct, s.Answered)
	return sb.String()
}

// formatQuizSummary renders the result of a finished visit.
func formatQuizSummary(s *entities.QuizSession) string {
	return fmt.Sprintf(
		"<b>🏁 Квиз завершён</b>\n\nОчки: %d\nВерных ответов: %d из %d",
		s.Score,
		s.Correct,
		s.Answered,
	)
}

// formatProgress renders today's progress and word statistics.
func formatProgress(state entities.ProgressState, stats service.ReviewStats) string {
	var sb strings.Builder
	sb.WriteString("<b>📊 Прогресс за сегодня</b>\n\n")
	sb.WriteString(buildProgressBar(state.TodayCount, state.DailyGoal, 20))
	fmt.Fprintf(&sb, "\n\n🎯 <b>Цель:</b> %d / %d (%.0f%%)", state.TodayCount, state.DailyGoal, state.Percentage())
	if state.GoalReached() {
		sb.WriteString("  🎉")
	}
	fmt.Fprintf(&sb, "\n\n📚 <b>Всего слов:</b> %d", stats.Total)
	fmt.Fprintf(&sb, "\n✅ <b>Выучено:</b> %d", stats.Mastered)
	fmt.Fprintf(&sb, "\n🔁 <b>На повторение:</b> %d", stats.NeedsReview)
	return sb.String()
}

// formatSettings renders the settings screen.
func formatSettings(s service.Settings) string {
	reminder := "выключено"
	if s.Reminder.Enabled {
		reminder = "в " + s.Reminder.TimeOfDay()
	}

	return fmt.Sprintf(
		"<b>⚙️ Настройки</b>\n\n🎯 <b>Цель в день:</b> %d слов\n⏰ <b>Напоминание:</b> %s",
		s.DailyGoal,
		reminder,
	)
}

// formatReminder renders the daily reminder.
func formatReminder(p entities.ReminderPayload) string {
	var sb strings.Builder
	sb.WriteString("⏰ <b>Время повторить слова!</b>\n\n")
	fmt.Fprintf(&sb, "Сегодня выучено %d из %d.", p.TodayCount, p.DailyGoal)
	if p.ReviewCount > 0 {
		fmt.Fprintf(&sb, "\nНа повторение ждут %d.", p.ReviewCount)
	}
	sb.WriteString("\n\n/cards · /review · /quiz")
	return sb.String()
}

// formatGoalReached congratulates on reaching the daily goal.
func formatGoalReached(state entities.ProgressState) string {
	return fmt.Sprintf("🎉 <b>Цель на сегодня выполнена!</b>\n\nВыучено слов: %d из %d.", state.TodayCount, state.DailyGoal)
}
