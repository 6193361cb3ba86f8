package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Common construction errors
var (
	ErrEmptyBaseURL = errors.New("base URL cannot be empty")
	ErrNilLogger    = errors.New("logger cannot be nil")
)

// TaskHandle identifies a submitted analysis task. The ID is opaque: it is
// used unmodified for all subsequent status queries.
type TaskHandle struct {
	ID string
}

// Client talks to an analysis server implementing the submission and
// polling protocol.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "analysis_client"),
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client. Useful for tests and
// callers needing custom transport settings.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

// Submit issues one task-creation request and returns the server-assigned
// task handle. All failure modes (transport, HTTP status, malformed JSON,
// missing task_id) surface as a *SubmitError.
func (c *Client) Submit(ctx context.Context, submission Submission) (*TaskHandle, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return nil, &SubmitError{Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, &SubmitError{Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("submitting analysis",
		"main_url", submission.MainURL,
		"comparison_count", len(submission.ComparisonURLs))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SubmitError{Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SubmitError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	var decoded struct {
		TaskID  string `json:"task_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &SubmitError{Message: "failed to decode response", Err: err}
	}
	if decoded.TaskID == "" {
		return nil, &SubmitError{Message: "response is missing task_id"}
	}

	c.logger.Info("analysis submitted", "task_id", decoded.TaskID)
	return &TaskHandle{ID: decoded.TaskID}, nil
}

// Status issues one status query for the given task and returns the status
// string verbatim. An unknown task reported by the server surfaces as
// ErrTaskNotFound; every other failure mode as a *StatusError.
func (c *Client) Status(ctx context.Context, taskID string) (string, error) {
	if taskID == "" {
		return "", ErrEmptyTaskID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/results/"+url.PathEscape(taskID), nil)
	if err != nil {
		return "", &StatusError{TaskID: taskID, Message: "failed to build request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &StatusError{TaskID: taskID, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{
			TaskID:     taskID,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	var decoded struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &StatusError{TaskID: taskID, Message: "failed to decode response", Err: err}
	}
	if decoded.Status == "" {
		return "", &StatusError{TaskID: taskID, Message: "response is missing status"}
	}

	return decoded.Status, nil
}

// readErrorMessage extracts a short diagnostic from an error response body.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 1024))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var decoded struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &decoded); err == nil && decoded.Error != "" {
		return decoded.Error
	}

	return strings.TrimSpace(string(data))
}
