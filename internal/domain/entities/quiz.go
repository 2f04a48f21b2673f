package entities

import (
	"time"
)

// PointsPerCorrect is awarded for every correct quiz answer.
const PointsPerCorrect = 10

// MinQuizEntries is the smallest store size that yields a full set of options.
const MinQuizEntries = 4

// QuizOption is one answer choice, tagged with the entry that owns the translation.
type QuizOption struct {
	EntryID string
	Text    string
}

// QuizQuestion asks for the translation of Prompt.
// Options usually hold four choices but may hold fewer when the store is small.
type QuizQuestion struct {
	Prompt  Entry
	Options []QuizOption
}

// IsCorrect reports whether the selected entry is the prompt.
func (q *QuizQuestion) IsCorrect(selectedEntryID string) bool {
	return selectedEntryID == q.Prompt.ID
}

// CorrectOption returns the option carrying the prompt's translation.
func (q *QuizQuestion) CorrectOption() (QuizOption, bool) {
	for _, opt := range q.Options {
		if opt.EntryID == q.Prompt.ID {
			return opt, true
		}
	}
	return QuizOption{}, false
}

// QuizSession represents the quiz screen state for the current visit.
// The score is not persisted and starts from zero on every visit.
type QuizSession struct {
	Seq       int           // number of the current question within the session
	Score     int           // accumulated points
	Correct   int           // correct answers so far
	Answered  int           // answered questions so far
	Current   *QuizQuestion // question on screen, nil before the first one
	Resolved  bool          // the current question has been answered
	StartedAt time.Time     // when the session was entered
}

// NewQuizSession creates an empty session.
func NewQuizSession() *QuizSession {
	return &QuizSession{
		StartedAt: time.Now(),
	}
}

// Advance replaces the current question.
func (qs *QuizSession) Advance(q *QuizQuestion) {
	qs.Seq++
	qs.Current = q
	qs.Resolved = false
}

// QuizResult describes the outcome of one answer.
type QuizResult struct {
	IsCorrect    bool
	Correct      QuizOption    // option with the right translation
	Score        int           // session score after the answer
	AdvanceAfter time.Duration // non-zero when the next question should follow automatically
	MarkedReview bool          // prompt entry was queued for review
}
