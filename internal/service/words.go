package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// WordStore holds the vocabulary entries in dataset order.
// Entries are loaded once per process; only their flags change afterwards.
type WordStore struct {
	loader DatasetLoader
	flags  FlagsRepository
	logger *zap.Logger

	once    sync.Once
	mu      sync.RWMutex
	entries []entities.Entry
	index   map[string]int // entry id -> position
	byTerm  map[string][]int
	subs    subscribers[entities.StoreEvent]
}

func NewWordStore(loader DatasetLoader, flags FlagsRepository, logger *zap.Logger) *WordStore {
	return &WordStore{
		loader: loader,
		flags:  flags,
		logger: logger,
		index:  make(map[string]int),
		byTerm: make(map[string][]int),
	}
}

// Load reads the dataset and applies persisted flags. Only the first call
// does any work. A missing or broken dataset leaves the store empty.
func (s *WordStore) Load(ctx context.Context) []entities.Entry {
	s.once.Do(func() {
		s.load(ctx)
	})
	return s.Entries()
}

func (s *WordStore) load(ctx context.Context) {
	words, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load dataset, word store stays empty", zap.Error(err))
		return
	}

	mastered, review, err := s.flags.LoadFlags(ctx)
	if err != nil {
		s.logger.Warn("some stored word flags are unreadable", zap.Error(err))
	}
	masteredSet := toSet(mastered)
	reviewSet := toSet(review)

	s.mu.Lock()
	for i := range words {
		e := words[i]
		e.ID = uuid.NewString()
		e.ClearFlags()
		if masteredSet[e.Term] {
			e.SetMastered(true)
		} else if reviewSet[e.Term] {
			e.MarkNeedsReview()
		}

		pos := len(s.entries)
		s.entries = append(s.entries, e)
		s.index[e.ID] = pos
		s.byTerm[e.Term] = append(s.byTerm[e.Term], pos)
	}

	for term, positions := range s.byTerm {
		if len(positions) > 1 {
			s.logger.Warn("duplicate term in dataset, flags are shared",
				zap.String("term", term),
				zap.Int("count", len(positions)),
			)
		}
	}
	total := len(s.entries)
	s.mu.Unlock()

	s.logger.Info("word store loaded",
		zap.Int("words", total),
		zap.Int("mastered", len(mastered)),
		zap.Int("review", len(review)),
	)

	s.subs.notify(entities.StoreEvent{Kind: entities.StoreLoaded})
}

// Entries returns a copy of all entries in dataset order.
func (s *WordStore) Entries() []entities.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *WordStore) Get(id string) (entities.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return entities.Entry{}, false
	}
	return s.entries[pos], true
}

func (s *WordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers fn for store changes and returns a function that removes it.
func (s *WordStore) Subscribe(fn func(entities.StoreEvent)) func() {
	return s.subs.add(fn)
}

// update applies fn to the entry with the given id and copies the resulting
// flags to every entry sharing its term. It returns the updated entry and
// whether any flag changed.
func (s *WordStore) update(id string, fn func(e *entities.Entry) bool) (entities.Entry, bool, error) {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return entities.Entry{}, false, ErrEntryNotFound
	}

	target := &s.entries[pos]
	changed := fn(target)

	var ids []string
	if changed {
		for _, p := range s.byTerm[target.Term] {
			e := &s.entries[p]
			e.Mastered = target.Mastered
			e.NeedsReview = target.NeedsReview
			ids = append(ids, e.ID)
		}
	}
	updated := *target
	s.mu.Unlock()

	if changed {
		s.subs.notify(entities.StoreEvent{Kind: entities.StoreFlagsChanged, EntryIDs: ids})
	}

	return updated, changed, nil
}

// flagTerms returns the distinct mastered and needs-review terms in store order.
func (s *WordStore) flagTerms() (mastered, review []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mastered = []string{}
	review = []string{}
	seen := make(map[string]bool)

	for _, e := range s.entries {
		if seen[e.Term] {
			continue
		}
		seen[e.Term] = true

		switch {
		case e.Mastered:
			mastered = append(mastered, e.Term)
		case e.NeedsReview:
			review = append(review, e.Term)
		}
	}

	return mastered, review
}

// clearFlags drops mastery and review state of every entry.
func (s *WordStore) clearFlags() {
	s.mu.Lock()
	for i := range s.entries {
		s.entries[i].ClearFlags()
	}
	s.mu.Unlock()

	s.subs.notify(entities.StoreEvent{Kind: entities.StoreReset})
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[v] = true
	}
	return set
}
