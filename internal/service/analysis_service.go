package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PiyushChall/CogniSynapseRank/internal/domain"
	"github.com/PiyushChall/CogniSynapseRank/internal/events"
	"github.com/PiyushChall/CogniSynapseRank/internal/store"
	"github.com/PiyushChall/CogniSynapseRank/internal/task"
)

// AnalysisService defines the operations for managing SEO analyses.
type AnalysisService interface {
	// CreateAnalysisAndEnqueueTask persists a new analysis and requests a
	// background task for it. Returns the created analysis.
	CreateAnalysisAndEnqueueTask(ctx context.Context, mainURL string, comparisonURLs []string) (*domain.Analysis, error)

	// GetAnalysis retrieves an analysis by ID.
	// Returns ErrAnalysisNotFound if no analysis exists with that ID.
	GetAnalysis(ctx context.Context, analysisID uuid.UUID) (*domain.Analysis, error)

	// UpdateAnalysisStatus updates an analysis lifecycle status.
	UpdateAnalysisStatus(ctx context.Context, analysisID uuid.UUID, status domain.AnalysisStatus) error

	// SetAnalysisProgress updates the progress label exposed to polling clients.
	SetAnalysisProgress(ctx context.Context, analysisID uuid.UUID, label string) error

	// CompleteAnalysis stores the final results and marks the analysis completed.
	CompleteAnalysis(ctx context.Context, analysisID uuid.UUID, results domain.AnalysisResults) error

	// FailAnalysis marks the analysis failed with the given cause.
	FailAnalysis(ctx context.Context, analysisID uuid.UUID, cause error) error
}

// analysisService implements AnalysisService.
type analysisService struct {
	repo    AnalysisRepository
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	repo AnalysisRepository,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (AnalysisService, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if emitter == nil {
		return nil, ErrNilEventEmitter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &analysisService{
		repo:    repo,
		emitter: emitter,
		logger:  logger.With("component", "analysis_service"),
	}, nil
}

// CreateAnalysisAndEnqueueTask persists a new analysis within a transaction
// and then emits a task request event. The analysis is created with the
// initial "Processing" progress label so clients polling immediately after
// submission see a meaningful status.
func (s *analysisService) CreateAnalysisAndEnqueueTask(
	ctx context.Context,
	mainURL string,
	comparisonURLs []string,
) (*domain.Analysis, error) {
	const op = "CreateAnalysisAndEnqueueTask"

	analysis, err := domain.NewAnalysis(mainURL, comparisonURLs)
	if err != nil {
		return nil, NewAnalysisServiceError(op, "invalid analysis", err)
	}

	logger := s.logger.With("analysis_id", analysis.ID, "main_url", mainURL)

	err = store.RunInTransaction(ctx, s.repo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Create(ctx, analysis); err != nil {
			return fmt.Errorf("failed to create analysis: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to create analysis", "error", err)
		return nil, NewAnalysisServiceError(op, "transaction failed", err)
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeSEOAnalysis, map[string]uuid.UUID{
		"analysis_id": analysis.ID,
	})
	if err != nil {
		logger.Error("failed to create task request event", "error", err)
		return nil, NewAnalysisServiceError(op, "failed to create event", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.Error("failed to emit task request event", "error", err)
		// The analysis row exists but no task will run for it. Mark it
		// failed so clients are not left polling forever.
		if failErr := s.FailAnalysis(ctx, analysis.ID, fmt.Errorf("failed to schedule analysis task: %w", err)); failErr != nil {
			logger.Error("failed to mark unscheduled analysis as failed", "error", failErr)
		}
		return nil, NewAnalysisServiceError(op, "failed to emit event", err)
	}

	logger.Info("analysis created and task requested")
	return analysis, nil
}

// GetAnalysis retrieves an analysis by ID.
func (s *analysisService) GetAnalysis(ctx context.Context, analysisID uuid.UUID) (*domain.Analysis, error) {
	const op = "GetAnalysis"

	analysis, err := s.repo.GetByID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, store.ErrAnalysisNotFound) || errors.Is(err, store.ErrNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, NewAnalysisServiceError(op, "failed to retrieve analysis", err)
	}

	return analysis, nil
}

// UpdateAnalysisStatus updates an analysis lifecycle status.
func (s *analysisService) UpdateAnalysisStatus(ctx context.Context, analysisID uuid.UUID, status domain.AnalysisStatus) error {
	const op = "UpdateAnalysisStatus"

	return s.mutateAnalysis(ctx, op, analysisID, func(analysis *domain.Analysis) error {
		return analysis.UpdateStatus(status)
	})
}

// SetAnalysisProgress updates the progress label exposed to polling clients.
func (s *analysisService) SetAnalysisProgress(ctx context.Context, analysisID uuid.UUID, label string) error {
	const op = "SetAnalysisProgress"

	return s.mutateAnalysis(ctx, op, analysisID, func(analysis *domain.Analysis) error {
		return analysis.SetProgress(label)
	})
}

// CompleteAnalysis stores the final results and marks the analysis completed.
func (s *analysisService) CompleteAnalysis(ctx context.Context, analysisID uuid.UUID, results domain.AnalysisResults) error {
	const op = "CompleteAnalysis"

	err := s.mutateAnalysis(ctx, op, analysisID, func(analysis *domain.Analysis) error {
		analysis.Complete(results)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("analysis completed", "analysis_id", analysisID)
	return nil
}

// FailAnalysis marks the analysis failed with the given cause.
func (s *analysisService) FailAnalysis(ctx context.Context, analysisID uuid.UUID, cause error) error {
	const op = "FailAnalysis"

	message := "analysis failed"
	if cause != nil {
		message = cause.Error()
	}

	err := s.mutateAnalysis(ctx, op, analysisID, func(analysis *domain.Analysis) error {
		analysis.Fail(message)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("analysis marked as failed",
		"analysis_id", analysisID,
		"cause", message)
	return nil
}

// mutateAnalysis loads the analysis, applies the mutation, and persists the
// result within a single transaction.
func (s *analysisService) mutateAnalysis(
	ctx context.Context,
	op string,
	analysisID uuid.UUID,
	mutate func(analysis *domain.Analysis) error,
) error {
	err := store.RunInTransaction(ctx, s.repo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.repo.WithTx(tx)

		analysis, err := txStore.GetByID(ctx, analysisID)
		if err != nil {
			return fmt.Errorf("failed to retrieve analysis: %w", err)
		}

		if err := mutate(analysis); err != nil {
			return fmt.Errorf("failed to apply update: %w", err)
		}

		if err := txStore.Update(ctx, analysis); err != nil {
			return fmt.Errorf("failed to save analysis: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrAnalysisNotFound) || errors.Is(err, store.ErrNotFound) {
			return ErrAnalysisNotFound
		}
		return NewAnalysisServiceError(op, "transaction failed", err)
	}

	return nil
}
