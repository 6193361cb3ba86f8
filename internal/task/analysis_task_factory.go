package task

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PiyushChall/CogniSynapseRank/internal/generation"
)

// AnalysisTaskFactory creates AnalysisTask instances with shared dependencies.
// It lets event handlers construct tasks without carrying the full set of
// pipeline dependencies themselves.
type AnalysisTaskFactory struct {
	analysisService AnalysisService
	fetcher         PageFetcher
	generator       generation.Generator
	logger          *slog.Logger
}

// NewAnalysisTaskFactory creates a factory for analysis tasks
func NewAnalysisTaskFactory(
	analysisService AnalysisService,
	fetcher PageFetcher,
	generator generation.Generator,
	logger *slog.Logger,
) (*AnalysisTaskFactory, error) {
	if analysisService == nil {
		return nil, ErrNilAnalysisService
	}
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &AnalysisTaskFactory{
		analysisService: analysisService,
		fetcher:         fetcher,
		generator:       generator,
		logger:          logger,
	}, nil
}

// CreateTask builds a new AnalysisTask for the given analysis ID.
func (f *AnalysisTaskFactory) CreateTask(analysisID uuid.UUID) (Task, error) {
	task, err := NewAnalysisTask(analysisID, f.analysisService, f.fetcher, f.generator, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis task: %w", err)
	}

	return task, nil
}
