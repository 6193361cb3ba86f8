package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PiyushChall/CogniSynapseRank/internal/domain"
	"github.com/PiyushChall/CogniSynapseRank/internal/generation"
)

// Common errors
var (
	ErrNilAnalysisService = errors.New("analysis service cannot be nil")
	ErrNilFetcher         = errors.New("page fetcher cannot be nil")
	ErrNilGenerator       = errors.New("generator cannot be nil")
	ErrNilLogger          = errors.New("logger cannot be nil")
	ErrEmptyAnalysisID    = errors.New("analysis ID cannot be empty")
)

// AnalysisService defines the interface for analysis service operations
// needed by the task. Defined here to keep the task decoupled from the
// service package.
type AnalysisService interface {
	// GetAnalysis retrieves an analysis by its ID
	GetAnalysis(ctx context.Context, analysisID uuid.UUID) (*domain.Analysis, error)

	// UpdateAnalysisStatus updates an analysis lifecycle status
	UpdateAnalysisStatus(ctx context.Context, analysisID uuid.UUID, status domain.AnalysisStatus) error

	// SetAnalysisProgress updates the progress label exposed to polling clients
	SetAnalysisProgress(ctx context.Context, analysisID uuid.UUID, label string) error

	// CompleteAnalysis stores the final results and marks the analysis completed
	CompleteAnalysis(ctx context.Context, analysisID uuid.UUID, results domain.AnalysisResults) error

	// FailAnalysis marks the analysis failed with the given cause
	FailAnalysis(ctx context.Context, analysisID uuid.UUID, cause error) error
}

// PageFetcher defines the interface for retrieving page text content.
type PageFetcher interface {
	// FetchText retrieves the page at url and returns its extracted text
	FetchText(ctx context.Context, url string) (string, error)
}

// pipelineStage describes one LLM stage of the analysis pipeline:
// the generation stage to run and the progress labels that bracket it.
type pipelineStage struct {
	stage          generation.Stage
	startedLabel   string
	completedLabel string
}

// pipelineStages lists the LLM stages in execution order. The label texts
// are part of the wire contract observed by polling clients.
var pipelineStages = []pipelineStage{
	{generation.StageKeyword, "Keyword Analysis Started", "Keyword Analysis Completed"},
	{generation.StageContent, "Content Analysis Started", "Content Analysis Completed"},
	{generation.StageOnPage, "On Page Analysis Started", "On Page Analysis Completed"},
	{generation.StageLinkBuilding, "Link Building Analysis Started", "Link Building Analysis Completed"},
	{generation.StageVisualization, "Visualization Started", "Visualization Completed"},
	{generation.StageManagerReview, "Manager AI Started", "Manager AI Completed"},
}

// analysisPayload represents the serialized data stored in the task
type analysisPayload struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
}

// AnalysisTask implements the Task interface for running the SEO
// analysis pipeline against a submitted URL.
type AnalysisTask struct {
	id              uuid.UUID
	analysisID      uuid.UUID
	analysisService AnalysisService
	fetcher         PageFetcher
	generator       generation.Generator
	logger          *slog.Logger
	status          TaskStatus
}

// NewAnalysisTask creates a new analysis task
func NewAnalysisTask(
	analysisID uuid.UUID,
	analysisService AnalysisService,
	fetcher PageFetcher,
	generator generation.Generator,
	logger *slog.Logger,
) (*AnalysisTask, error) {
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

	if analysisID == uuid.Nil {
		return nil, ErrEmptyAnalysisID
	}

	return &AnalysisTask{
		id:              uuid.New(),
		analysisID:      analysisID,
		analysisService: analysisService,
		fetcher:         fetcher,
		generator:       generator,
		logger:          logger.With("task_type", TaskTypeSEOAnalysis, "analysis_id", analysisID),
		status:          TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *AnalysisTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *AnalysisTask) Type() string {
	return TaskTypeSEOAnalysis
}

// Payload returns the task data as a byte slice
func (t *AnalysisTask) Payload() []byte {
	payload := analysisPayload{
		AnalysisID: t.analysisID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *AnalysisTask) Status() TaskStatus {
	return t.status
}

// Execute runs the analysis pipeline: it fetches the analyzed pages,
// runs each LLM stage in order with progress labels bracketing it, and
// finalizes the analysis with the collected section results. Any stage
// failure marks the analysis failed with the underlying cause.
func (t *AnalysisTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting analysis task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	// 1. Retrieve the analysis
	analysis, err := t.analysisService.GetAnalysis(ctx, t.analysisID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve analysis", "error", err)
		return fmt.Errorf("failed to retrieve analysis: %w", err)
	}

	t.logger.Info("retrieved analysis",
		"main_url", analysis.MainURL,
		"comparison_count", len(analysis.ComparisonURLs))

	// 2. Mark the analysis as processing
	if err := t.analysisService.UpdateAnalysisStatus(ctx, t.analysisID, domain.AnalysisStatusProcessing); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to update analysis status to processing", "error", err)
		return fmt.Errorf("failed to update analysis status to processing: %w", err)
	}

	// 3. Fetch the main page; its text drives the content stages
	pageText, err := t.fetcher.FetchText(ctx, analysis.MainURL)
	if err != nil {
		return t.fail(ctx, fmt.Errorf("failed to fetch main page: %w", err))
	}

	t.logger.Info("fetched main page", "text_length", len(pageText))

	// 4. Fetch comparison pages best-effort; failures are logged and skipped
	competitorPages := t.fetchCompetitorPages(ctx, analysis.ComparisonURLs)

	// 5. Run the LLM stages in order
	input := generation.SectionInput{
		URL:             analysis.MainURL,
		PageText:        pageText,
		CompetitorPages: competitorPages,
		Sections:        make(map[generation.Stage]string, len(pipelineStages)),
	}

	for _, ps := range pipelineStages {
		if err := ctx.Err(); err != nil {
			return t.fail(ctx, fmt.Errorf("task cancelled by context: %w", err))
		}

		if err := t.analysisService.SetAnalysisProgress(ctx, t.analysisID, ps.startedLabel); err != nil {
			t.logger.Error("failed to set progress label",
				"label", ps.startedLabel,
				"error", err)
		}

		section, err := t.generator.GenerateSection(ctx, ps.stage, input)
		if err != nil {
			return t.fail(ctx, fmt.Errorf("stage %s failed: %w", ps.stage, err))
		}

		input.Sections[ps.stage] = section
		t.logger.Info("stage completed",
			"stage", ps.stage,
			"section_length", len(section))

		if err := t.analysisService.SetAnalysisProgress(ctx, t.analysisID, ps.completedLabel); err != nil {
			t.logger.Error("failed to set progress label",
				"label", ps.completedLabel,
				"error", err)
		}
	}

	// 6. Store the final results; CompleteAnalysis sets the terminal label
	results := domain.AnalysisResults{
		KeywordResults:      input.Sections[generation.StageKeyword],
		ContentResults:      input.Sections[generation.StageContent],
		VisualizerResults:   input.Sections[generation.StageVisualization],
		ManagerResults:      input.Sections[generation.StageManagerReview],
		OnPageResults:       input.Sections[generation.StageOnPage],
		LinkBuildingResults: input.Sections[generation.StageLinkBuilding],
	}

	if err := t.analysisService.CompleteAnalysis(ctx, t.analysisID, results); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to complete analysis", "error", err)
		return fmt.Errorf("failed to complete analysis: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("analysis task completed successfully")
	return nil
}

// fetchCompetitorPages retrieves comparison page texts. A page that cannot
// be fetched is skipped; the pipeline runs with whatever context it got.
func (t *AnalysisTask) fetchCompetitorPages(ctx context.Context, urls []string) map[string]string {
	if len(urls) == 0 {
		return nil
	}

	pages := make(map[string]string, len(urls))
	for _, url := range urls {
		text, err := t.fetcher.FetchText(ctx, url)
		if err != nil {
			t.logger.Warn("failed to fetch comparison page, skipping",
				"url", url,
				"error", err)
			continue
		}
		pages[url] = text
	}

	return pages
}

// fail marks both the task and the analysis as failed and returns the cause.
func (t *AnalysisTask) fail(ctx context.Context, cause error) error {
	t.status = TaskStatusFailed
	t.logger.Error("analysis task failed", "error", cause)

	if err := t.analysisService.FailAnalysis(ctx, t.analysisID, cause); err != nil {
		t.logger.Error("failed to mark analysis as failed", "error", err)
	}

	return cause
}
