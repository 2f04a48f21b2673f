package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

// CategoryAll is the category filter that matches every entry.
const CategoryAll = "all"

var ErrEntryNotFound = errors.New("entry not found")

// FilterOptions narrows the card list.
type FilterOptions struct {
	Category   string // CategoryAll or empty means no restriction
	Search     string
	ReviewOnly bool // only needs-review entries; Category is ignored
}

// ReviewStats summarises study state across the store.
type ReviewStats struct {
	Total       int
	Mastered    int
	NeedsReview int
}

type ReviewService struct {
	store    *WordStore
	progress *ProgressTracker
	flags    FlagsRepository
	pointers PointerRepository
	logger   *zap.Logger
}

func NewReviewService(
	store *WordStore,
	progress *ProgressTracker,
	flags FlagsRepository,
	pointers PointerRepository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		store:    store,
		progress: progress,
		flags:    flags,
		pointers: pointers,
		logger:   logger,
	}
}

// Categories returns CategoryAll followed by the distinct category labels, sorted.
func (s *ReviewService) Categories() []string {
	seen := make(map[string]bool)
	var labels []string

	for _, e := range s.store.Entries() {
		if e.Category == nil || seen[*e.Category] {
			continue
		}
		seen[*e.Category] = true
		labels = append(labels, *e.Category)
	}
	sort.Strings(labels)

	return append([]string{CategoryAll}, labels...)
}

func (s *ReviewService) Filter(opts FilterOptions) []entities.Entry {
	return FilterEntries(s.store.Entries(), opts)
}

// FilterEntries keeps entries matching opts, preserving their order.
// Search matches the term case-insensitively and the translation as is.
func FilterEntries(entries []entities.Entry, opts FilterOptions) []entities.Entry {
	out := make([]entities.Entry, 0, len(entries))
	needle := strings.ToLower(opts.Search)

	for _, e := range entries {
		if opts.ReviewOnly {
			if !e.NeedsReview {
				continue
			}
		} else if opts.Category != "" && opts.Category != CategoryAll && e.CategoryLabel() != opts.Category {
			continue
		}

		if opts.Search != "" &&
			!strings.Contains(strings.ToLower(e.Term), needle) &&
			!strings.Contains(e.Translation, opts.Search) {
			continue
		}

		out = append(out, e)
	}

	return out
}

// ReviewQueue returns the entries waiting for review.
func (s *ReviewService) ReviewQueue() []entities.Entry {
	return FilterEntries(s.store.Entries(), FilterOptions{ReviewOnly: true})
}

func (s *ReviewService) Stats() ReviewStats {
	var st ReviewStats
	for _, e := range s.store.Entries() {
		st.Total++
		if e.Mastered {
			st.Mastered++
		}
		if e.NeedsReview {
			st.NeedsReview++
		}
	}
	return st
}

// ToggleMastered flips the mastered flag of the entry and updates today's count.
func (s *ReviewService) ToggleMastered(ctx context.Context, id string) (entities.Entry, error) {
	var wasMastered bool
	e, _, err := s.store.update(id, func(e *entities.Entry) bool {
		wasMastered = e.Mastered
		return e.SetMastered(!e.Mastered)
	})
	if err != nil {
		return entities.Entry{}, err
	}

	// The flag already changed in memory, so today's count follows it
	// even when saving the flags fails.
	persistErr := s.persistFlags(ctx)
	recordErr := s.progress.RecordMastered(ctx, wasMastered)
	if err := errors.Join(persistErr, recordErr); err != nil {
		return e, err
	}

	s.logger.Debug("mastered toggled",
		zap.String("term", e.Term),
		zap.Bool("mastered", e.Mastered),
	)

	return e, nil
}

// MarkNeedsReview queues the entry for review unless it is mastered.
// It reports whether the flag changed.
func (s *ReviewService) MarkNeedsReview(ctx context.Context, id string) (bool, error) {
	_, changed, err := s.store.update(id, func(e *entities.Entry) bool {
		return e.MarkNeedsReview()
	})
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	if err := s.persistFlags(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (s *ReviewService) persistFlags(ctx context.Context) error {
	mastered, review := s.store.flagTerms()
	if err := s.flags.SaveFlags(ctx, mastered, review); err != nil {
		return fmt.Errorf("save flags: %w", err)
	}
	return nil
}

// LastCategory returns the last selected category, CategoryAll when none
// was stored or the stored one no longer exists.
func (s *ReviewService) LastCategory(ctx context.Context) string {
	c, err := s.pointers.LastCategory(ctx)
	if err != nil {
		s.logger.Warn("failed to load last category", zap.Error(err))
		return CategoryAll
	}

	for _, known := range s.Categories() {
		if known == c {
			return c
		}
	}
	return CategoryAll
}

func (s *ReviewService) SetLastCategory(ctx context.Context, category string) error {
	return s.pointers.SaveLastCategory(ctx, category)
}

// LastViewed returns the last viewed entry. Ids are regenerated on every
// load, so an id stored by a previous run does not resolve.
func (s *ReviewService) LastViewed(ctx context.Context) (entities.Entry, bool) {
	id, err := s.pointers.LastViewed(ctx)
	if err != nil {
		s.logger.Warn("failed to load last viewed word", zap.Error(err))
		return entities.Entry{}, false
	}
	if id == "" {
		return entities.Entry{}, false
	}
	return s.store.Get(id)
}

func (s *ReviewService) SetLastViewed(ctx context.Context, id string) error {
	return s.pointers.SaveLastViewed(ctx, id)
}
