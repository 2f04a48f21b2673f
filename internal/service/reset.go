package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type ResetService struct {
	store    *WordStore
	progress *ProgressTracker
	repo     StudyStateRepository
	logger   *zap.Logger
}

func NewResetService(
	store *WordStore,
	progress *ProgressTracker,
	repo StudyStateRepository,
	logger *zap.Logger,
) *ResetService {
	return &ResetService{
		store:    store,
		progress: progress,
		repo:     repo,
		logger:   logger,
	}
}

// ResetAll forgets all study state: word flags, stored term lists,
// last viewed pointers and today's count. The daily goal and reminder
// settings are kept. Every step runs even when an earlier one fails.
func (s *ResetService) ResetAll(ctx context.Context) error {
	var errs []error

	if err := s.repo.ClearStudyState(ctx); err != nil {
		errs = append(errs, err)
	}

	s.store.clearFlags()

	if err := s.progress.ResetAll(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	s.logger.Info("study progress reset")
	return nil
}
