package telegram

import (
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func newHTMLEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	return edit
}

func withKeyboard(msg tgbotapi.MessageConfig, kb tgbotapi.InlineKeyboardMarkup) tgbotapi.MessageConfig {
	msg.ReplyMarkup = kb
	return msg
}

// esc escapes user-visible dataset text for HTML parse mode.
func esc(s string) string {
	return html.EscapeString(s)
}
