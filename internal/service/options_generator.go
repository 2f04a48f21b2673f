package service

import (
	"math/rand"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// DefaultMaxDistractorAttempts bounds distractor sampling per question.
const DefaultMaxDistractorAttempts = 100

// distractorCount is the number of wrong options per question.
const distractorCount = entities.MinQuizEntries - 1

// OptionGenerator builds multiple choice questions from a set of entries.
// It is not safe for concurrent use.
type OptionGenerator struct {
	rnd         *rand.Rand
	maxAttempts int
}

// NewOptionGenerator creates a generator drawing from rnd.
func NewOptionGenerator(rnd *rand.Rand, maxAttempts int) *OptionGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxDistractorAttempts
	}
	return &OptionGenerator{
		rnd:         rnd,
		maxAttempts: maxAttempts,
	}
}

// Generate picks a prompt uniformly and up to three distinct distractors.
// Sampling gives up after maxAttempts draws, so small stores yield fewer
// options. The options are shuffled.
func (g *OptionGenerator) Generate(entries []entities.Entry) (*entities.QuizQuestion, error) {
	if len(entries) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	promptIdx := g.rnd.Intn(len(entries))
	prompt := entries[promptIdx]

	used := map[int]bool{promptIdx: true}
	options := []entities.QuizOption{{EntryID: prompt.ID, Text: prompt.Translation}}

	for attempts := 0; attempts < g.maxAttempts && len(options) <= distractorCount; attempts++ {
		idx := g.rnd.Intn(len(entries))
		if used[idx] {
			continue
		}
		used[idx] = true
		options = append(options, entities.QuizOption{
			EntryID: entries[idx].ID,
			Text:    entries[idx].Translation,
		})
	}

	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return &entities.QuizQuestion{
		Prompt:  prompt,
		Options: options,
	}, nil
}
