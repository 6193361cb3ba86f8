package api

import (
	_ "embed"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/PiyushChall/CogniSynapseRank/internal/api/shared"
	"github.com/PiyushChall/CogniSynapseRank/internal/domain"
	"github.com/PiyushChall/CogniSynapseRank/internal/service"
)

// submissionMessage is the acknowledgement text returned by POST /analyze.
const submissionMessage = "Analysis started. Check /results for updates."

// taskNotFoundStatus is the status label returned for unknown task IDs.
const taskNotFoundStatus = "Task not found"

//go:embed index.html
var indexPage []byte

// AnalysisHandler handles analysis-related HTTP requests.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	validator       *validator.Validate
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		validator:       validator.New(),
	}
}

// Index handles GET / requests, serving the submission and polling page.
func (h *AnalysisHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}

// Analyze handles POST /analyze requests. It creates an analysis record,
// schedules the background pipeline, and returns the task ID clients use
// to poll for results.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	analysis, err := h.analysisService.CreateAnalysisAndEnqueueTask(r.Context(), req.MainURL, req.ComparisonURLs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err),
			"Failed to start analysis",
			err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, AnalyzeResponse{
		TaskID:  analysis.ID.String(),
		Message: submissionMessage,
	})
}

// Results handles GET /results/{task_id} requests. It reports the current
// progress label for the analysis; repeated reads of the same state return
// the same label. Unknown or malformed task IDs get a 404 with the
// "Task not found" status so clients can stop polling.
func (h *AnalysisHandler) Results(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	analysisID, err := uuid.Parse(taskID)
	if err != nil {
		shared.RespondWithJSON(w, r, http.StatusNotFound, ResultsResponse{
			Status: taskNotFoundStatus,
			Error:  "unknown task ID",
		})
		return
	}

	analysis, err := h.analysisService.GetAnalysis(r.Context(), analysisID)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			shared.RespondWithJSON(w, r, http.StatusNotFound, ResultsResponse{
				Status: taskNotFoundStatus,
				Error:  "unknown task ID",
			})
			return
		}

		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err),
			GetSafeErrorMessage(err),
			err)
		return
	}

	resp := ResultsResponse{Status: analysis.Progress}
	switch analysis.Status {
	case domain.AnalysisStatusCompleted:
		results := analysis.Results
		resp.Results = &results
	case domain.AnalysisStatusFailed:
		resp.Error = analysis.ErrorMessage
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Health handles GET /health requests.
func (h *AnalysisHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
