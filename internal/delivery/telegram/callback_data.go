package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionCards    = "cards"
	actionCategory = "cat"
	actionQuiz     = "quiz"
	actionProgress = "progress"
	actionSettings = "settings"
	actionReset    = "reset"
)

// Cards sub-actions.
const (
	cardsShow       = "show"
	cardsFlip       = "flip"
	cardsNext       = "next"
	cardsPrev       = "prev"
	cardsMaster     = "master"
	cardsSpeak      = "speak"
	cardsCategories = "cats"
	cardsReview     = "review"
)

// Quiz sub-actions.
const (
	quizStart  = "start"
	quizAnswer = "ans"
	quizNext   = "next"
	quizExit   = "exit"
)

// Settings sub-actions.
const (
	settingsMenu     = "menu"
	settingsGoalInc  = "goal_inc"
	settingsGoalDec  = "goal_dec"
	settingsReminder = "reminder"
	settingsTime     = "time"
)

const (
	resetAsk     = "ask"
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// param returns the i-th parameter or an empty string.
func (cd callbackData) param(i int) string {
	if i < len(cd.Params) {
		return cd.Params[i]
	}
	return ""
}

// intParam parses the i-th parameter as an int.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

func buildCardsCallback(sub string, params ...string) string {
	return callbackData{
		Action: actionCards,
		Params: append([]string{sub}, params...),
	}.encode()
}

// buildCategoryCallback refers to a category by its position in the category list.
func buildCategoryCallback(idx int) string {
	return callbackData{
		Action: actionCategory,
		Params: []string{strconv.Itoa(idx)},
	}.encode()
}

func buildQuizStartCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizStart}}.encode()
}

// buildQuizAnswerCallback carries the question number so stale buttons can be detected.
func buildQuizAnswerCallback(seq int, entryID string) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizAnswer, strconv.Itoa(seq), entryID},
	}.encode()
}

func buildQuizNextCallback(seq int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizNext, strconv.Itoa(seq)},
	}.encode()
}

func buildQuizExitCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizExit}}.encode()
}

// buildProgressCallback builds callback data for opening the progress view.
func buildProgressCallback() string {
	return actionProgress
}

// buildSettingsCallback builds callback data for settings-related actions.
func buildSettingsCallback(subAction string, value ...string) string {
	params := []string{subAction}
	params = append(params, value...)
	return callbackData{
		Action: actionSettings,
		Params: params,
	}.encode()
}

func buildReminderTimeCallback(hour int) string {
	return buildSettingsCallback(settingsTime, strconv.Itoa(hour))
}

func buildResetCallback(sub string) string {
	return callbackData{Action: actionReset, Params: []string{sub}}.encode()
}
