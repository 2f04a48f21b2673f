package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/service"
)

// quizView holds the quiz of the current visit. Leaving the quiz drops the
// session, so the score starts from zero on the next visit.
type quizView struct {
	session *entities.QuizSession
}

func (v *quizView) close() {
	v.session = nil
}

// active returns the session when seq refers to its current question.
func (v *quizView) active(seq int) (*entities.QuizSession, bool) {
	if v.session == nil || v.session.Seq != seq {
		return nil, false
	}
	return v.session, true
}

func (h *Handler) quizCommand() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		view, err := h.startQuiz()
		if err != nil {
			return err
		}

		msg := newHTMLMessage(chatID, view.text)
		if view.markup != nil {
			msg.ReplyMarkup = view.markup
		}
		h.send(msg)
		return nil
	}
}

// startQuiz opens a new visit with the first question.
func (h *Handler) startQuiz() (callbackView, error) {
	h.quizzes.close()

	if !h.quiz.Available() {
		return callbackView{text: msgQuizDisabled}, nil
	}

	session := h.quiz.StartSession()
	if err := h.quiz.Next(session); err != nil {
		if errors.Is(err, service.ErrNoQuestionsAvailable) {
			return callbackView{text: msgQuizDisabled}, nil
		}
		return callbackView{}, err
	}

	h.quizzes.session = session
	return questionView(session), nil
}

func questionView(s *entities.QuizSession) callbackView {
	kb := buildQuizAnswerKeyboard(s)
	return callbackView{text: formatQuestion(s), markup: &kb}
}

func (h *Handler) handleQuizCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (callbackView, error) {
	switch data.param(0) {
	case quizStart:
		return h.startQuiz()

	case quizAnswer:
		seq, _ := data.intParam(1)
		return h.answerQuiz(ctx, cb, seq, data.param(2))

	case quizNext:
		seq, _ := data.intParam(1)
		session, ok := h.quizzes.active(seq)
		if !ok || !session.Resolved {
			return callbackView{notice: msgStale}, nil
		}
		return h.nextQuestion(session)

	case quizExit:
		session := h.quizzes.session
		h.quizzes.close()

		kb := buildQuizResultKeyboard()
		if session == nil {
			return callbackView{text: msgQuizFinished, markup: &kb}, nil
		}
		return callbackView{text: formatQuizSummary(session), markup: &kb}, nil

	default:
		h.logger.Debug("unknown quiz callback", zap.String("data", data.Raw))
		return callbackView{}, nil
	}
}

func (h *Handler) answerQuiz(ctx context.Context, cb *tgbotapi.CallbackQuery, seq int, entryID string) (callbackView, error) {
	session, ok := h.quizzes.active(seq)
	if !ok {
		return callbackView{notice: msgStale}, nil
	}

	res, err := h.quiz.Evaluate(ctx, session, entryID)
	switch {
	case errors.Is(err, service.ErrQuestionAnswered),
		errors.Is(err, service.ErrUnknownOption),
		errors.Is(err, service.ErrNoActiveQuestion):
		return callbackView{notice: msgStale}, nil
	case err != nil:
		return callbackView{}, err
	}

	if res.AdvanceAfter > 0 {
		h.scheduleAdvance(cb.Message.Chat.ID, cb.Message.MessageID, session, res.AdvanceAfter)
	}

	kb := buildQuizAnsweredKeyboard(session, res)
	notice := "✅"
	if !res.IsCorrect {
		notice = "❌"
	}
	return callbackView{text: formatAnswer(session, res), markup: &kb, notice: notice}, nil
}

// scheduleAdvance shows the next question after delay unless the user moved on.
func (h *Handler) scheduleAdvance(chatID int64, msgID int, session *entities.QuizSession, delay time.Duration) {
	seq := session.Seq

	time.AfterFunc(delay, func() {
		h.Post(func(ctx context.Context) {
			current, ok := h.quizzes.active(seq)
			if !ok || current != session || !current.Resolved {
				return
			}

			view, err := h.nextQuestion(current)
			if err != nil {
				h.logger.Error("failed to advance quiz", zap.Error(err))
				return
			}
			h.edit(chatID, msgID, view)
		})
	})
}

func (h *Handler) nextQuestion(session *entities.QuizSession) (callbackView, error) {
	if err := h.quiz.Next(session); err != nil {
		if errors.Is(err, service.ErrNoQuestionsAvailable) {
			h.quizzes.close()
			return callbackView{text: msgQuizDisabled}, nil
		}
		return callbackView{}, err
	}
	return questionView(session), nil
}
