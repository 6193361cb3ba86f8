package api

import (
	"github.com/PiyushChall/CogniSynapseRank/internal/domain"
)

// Common request/response structures

// AnalyzeRequest defines the payload for the analysis submission endpoint.
type AnalyzeRequest struct {
	MainURL        string   `json:"main_url"        validate:"required,url"`
	ComparisonURLs []string `json:"comparison_urls" validate:"omitempty,dive,url"`
}

// AnalyzeResponse defines the successful response for the submission endpoint.
type AnalyzeResponse struct {
	// TaskID identifies the analysis for subsequent result polling
	TaskID string `json:"task_id"`

	// Message is a human-readable acknowledgement
	Message string `json:"message"`
}

// ResultsResponse defines the response for the results polling endpoint.
// Status always carries the current progress label; Results is present only
// once the analysis has completed, Error only when it has failed.
type ResultsResponse struct {
	Status  string                  `json:"status"`
	Results *domain.AnalysisResults `json:"results,omitempty"`
	Error   string                  `json:"error,omitempty"`
}
