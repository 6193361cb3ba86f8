package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus represents the processing state of an analysis.
type AnalysisStatus string

// Possible analysis status values
const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// Progress labels reported on the wire via GET /results/{task_id}.
// ProgressCompleted is the terminal sentinel clients stop polling on;
// ProgressFailed is the terminal failure label.
const (
	ProgressProcessing = "Processing"
	ProgressCompleted  = "Analysis Completed"
	ProgressFailed     = "Analysis Failed"
)

// Common validation errors for Analysis
var (
	ErrEmptyAnalysisID       = errors.New("analysis ID cannot be empty")
	ErrEmptyMainURL          = errors.New("analysis main URL cannot be empty")
	ErrInvalidAnalysisStatus = errors.New("invalid analysis status")
	ErrEmptyProgress         = errors.New("analysis progress label cannot be empty")
)

// AnalysisResults holds the per-section report texts produced by the
// analysis pipeline. JSON keys match the wire format of the results payload.
type AnalysisResults struct {
	KeywordResults      string `json:"keyword_results"`
	ContentResults      string `json:"content_results"`
	VisualizerResults   string `json:"visualizer_results"`
	ManagerResults      string `json:"manager_results"`
	OnPageResults       string `json:"onpage_results"`
	LinkBuildingResults string `json:"linkbuilding_results"`
}

// Analysis represents one SEO analysis request submitted by a user.
// It tracks the analyzed URLs, the lifecycle status of the background
// work, the human-readable progress label exposed to polling clients,
// and the final per-section results.
type Analysis struct {
	ID             uuid.UUID       `json:"id"`
	MainURL        string          `json:"main_url"`
	ComparisonURLs []string        `json:"comparison_urls"`
	Status         AnalysisStatus  `json:"status"`
	Progress       string          `json:"progress"`
	Results        AnalysisResults `json:"results"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewAnalysis creates a new Analysis for the given URLs.
// It generates a new UUID, sets the status to pending with the initial
// "Processing" progress label, and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewAnalysis(mainURL string, comparisonURLs []string) (*Analysis, error) {
	analysis := &Analysis{
		ID:             uuid.New(),
		MainURL:        mainURL,
		ComparisonURLs: comparisonURLs,
		Status:         AnalysisStatusPending,
		Progress:       ProgressProcessing,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	return analysis, nil
}

// Validate checks if the Analysis has valid data.
// Returns an error if any field fails validation.
func (a *Analysis) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAnalysisID
	}

	if a.MainURL == "" {
		return ErrEmptyMainURL
	}

	if !isValidAnalysisStatus(a.Status) {
		return ErrInvalidAnalysisStatus
	}

	if a.Progress == "" {
		return ErrEmptyProgress
	}

	return nil
}

// UpdateStatus updates the analysis status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (a *Analysis) UpdateStatus(status AnalysisStatus) error {
	if !isValidAnalysisStatus(status) {
		return ErrInvalidAnalysisStatus
	}

	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// SetProgress updates the progress label exposed to polling clients.
// Returns an error if the label is empty.
func (a *Analysis) SetProgress(label string) error {
	if label == "" {
		return ErrEmptyProgress
	}

	a.Progress = label
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete marks the analysis as successfully completed, storing the
// final results and setting the terminal progress label.
func (a *Analysis) Complete(results AnalysisResults) {
	a.Status = AnalysisStatusCompleted
	a.Progress = ProgressCompleted
	a.Results = results
	a.ErrorMessage = ""
	a.UpdatedAt = time.Now().UTC()
}

// Fail marks the analysis as failed with the given error message and
// sets the terminal failure progress label.
func (a *Analysis) Fail(message string) {
	a.Status = AnalysisStatusFailed
	a.Progress = ProgressFailed
	a.ErrorMessage = message
	a.UpdatedAt = time.Now().UTC()
}

// IsTerminal reports whether the analysis has reached a terminal status.
func (a *Analysis) IsTerminal() bool {
	return a.Status == AnalysisStatusCompleted || a.Status == AnalysisStatusFailed
}

// isValidAnalysisStatus checks if the given status is a valid AnalysisStatus.
func isValidAnalysisStatus(status AnalysisStatus) bool {
	switch status {
	case AnalysisStatusPending, AnalysisStatusProcessing,
		AnalysisStatusCompleted, AnalysisStatusFailed:
		return true
	default:
		return false
	}
}
