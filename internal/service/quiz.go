package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// DefaultAdvanceDelay is the pause before the next question after a correct answer.
const DefaultAdvanceDelay = 1500 * time.Millisecond

var (
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrQuestionAnswered     = errors.New("question already answered")
	ErrNoActiveQuestion     = errors.New("no active question")
	ErrUnknownOption        = errors.New("option does not belong to the question")
)

type QuizConfig struct {
	MaxDistractorAttempts int
	AdvanceDelay          time.Duration
}

type QuizService struct {
	store        *WordStore
	review       *ReviewService
	feedback     Feedback
	advanceDelay time.Duration
	logger       *zap.Logger

	mu        sync.Mutex // guards generator, rand.Rand is not goroutine safe
	generator *OptionGenerator
}

func NewQuizService(
	store *WordStore,
	review *ReviewService,
	feedback Feedback,
	cfg QuizConfig,
	rnd *rand.Rand,
	logger *zap.Logger,
) *QuizService {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.AdvanceDelay <= 0 {
		cfg.AdvanceDelay = DefaultAdvanceDelay
	}

	return &QuizService{
		store:        store,
		review:       review,
		feedback:     feedback,
		advanceDelay: cfg.AdvanceDelay,
		logger:       logger,
		generator:    NewOptionGenerator(rnd, cfg.MaxDistractorAttempts),
	}
}

// Available reports whether the store is large enough for a full quiz.
func (s *QuizService) Available() bool {
	return s.store.Len() >= entities.MinQuizEntries
}

// NewQuestion builds a question from the current store.
func (s *QuizService) NewQuestion() (*entities.QuizQuestion, error) {
	entries := s.store.Entries()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generator.Generate(entries)
}

// StartSession opens a quiz visit with a zero score.
func (s *QuizService) StartSession() *entities.QuizSession {
	return entities.NewQuizSession()
}

// Next replaces the session's question with a fresh one.
func (s *QuizService) Next(session *entities.QuizSession) error {
	q, err := s.NewQuestion()
	if err != nil {
		return err
	}

	session.Advance(q)
	return nil
}

// Evaluate checks the selected option against the session's question.
// A correct answer adds points and asks for an automatic advance; a wrong
// one queues the prompt for review and leaves the advance to the user.
func (s *QuizService) Evaluate(
	ctx context.Context,
	session *entities.QuizSession,
	selectedEntryID string,
) (*entities.QuizResult, error) {
	q := session.Current
	if q == nil {
		return nil, ErrNoActiveQuestion
	}
	if session.Resolved {
		return nil, ErrQuestionAnswered
	}

	if !hasOption(q, selectedEntryID) {
		return nil, ErrUnknownOption
	}

	session.Resolved = true
	session.Answered++

	correct, _ := q.CorrectOption()
	result := &entities.QuizResult{
		IsCorrect: q.IsCorrect(selectedEntryID),
		Correct:   correct,
	}

	if result.IsCorrect {
		session.Score += entities.PointsPerCorrect
		session.Correct++
		result.AdvanceAfter = s.advanceDelay
		s.feedback.Correct()
	} else {
		marked, err := s.review.MarkNeedsReview(ctx, q.Prompt.ID)
		if err != nil {
			s.logger.Error("failed to mark word for review",
				zap.String("term", q.Prompt.Term),
				zap.Error(err),
			)
		}
		result.MarkedReview = marked
		s.feedback.Incorrect()
	}

	result.Score = session.Score
	return result, nil
}

func hasOption(q *entities.QuizQuestion, entryID string) bool {
	for _, opt := range q.Options {
		if opt.EntryID == entryID {
			return true
		}
	}
	return false
}
