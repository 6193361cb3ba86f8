package client_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiyushChall/CogniSynapseRank/internal/client"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()
	c, err := client.NewClient(baseURL, testLogger())
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("rejects empty base URL", func(t *testing.T) {
		_, err := client.NewClient("", testLogger())
		assert.ErrorIs(t, err, client.ErrEmptyBaseURL)
	})

	t.Run("rejects nil logger", func(t *testing.T) {
		_, err := client.NewClient("http://localhost:8080", nil)
		assert.ErrorIs(t, err, client.ErrNilLogger)
	})

	t.Run("accepts valid base URL", func(t *testing.T) {
		c, err := client.NewClient("http://localhost:8080/", testLogger())
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestSubmit(t *testing.T) {
	t.Run("posts submission and returns task handle", func(t *testing.T) {
		var gotBody map[string]any
		var gotContentType string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/analyze", r.URL.Path)
			gotContentType = r.Header.Get("Content-Type")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"task_id": "task-123", "message": "Analysis started. Check /results for updates."}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		handle, err := c.Submit(context.Background(), client.Submission{
			MainURL:        "https://example.com",
			ComparisonURLs: []string{"https://rival.example"},
		})
		require.NoError(t, err)
		assert.Equal(t, "task-123", handle.ID)

		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "https://example.com", gotBody["main_url"])
		assert.Equal(t, []any{"https://rival.example"}, gotBody["comparison_urls"])
	})

	t.Run("non-2xx response yields SubmitError with status code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "Validation error"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.Submit(context.Background(), client.Submission{MainURL: "x"})
		require.Error(t, err)

		var submitErr *client.SubmitError
		require.ErrorAs(t, err, &submitErr)
		assert.Equal(t, http.StatusBadRequest, submitErr.StatusCode)
		assert.Contains(t, submitErr.Message, "Validation error")
	})

	t.Run("malformed JSON response yields SubmitError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.Submit(context.Background(), client.Submission{MainURL: "x"})

		var submitErr *client.SubmitError
		require.ErrorAs(t, err, &submitErr)
		assert.Contains(t, submitErr.Message, "decode")
	})

	t.Run("missing task_id yields SubmitError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message": "ok"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.Submit(context.Background(), client.Submission{MainURL: "x"})

		var submitErr *client.SubmitError
		require.ErrorAs(t, err, &submitErr)
		assert.Contains(t, submitErr.Message, "task_id")
	})

	t.Run("transport failure yields SubmitError", func(t *testing.T) {
		c := newTestClient(t, "http://127.0.0.1:1") // nothing listens here

		_, err := c.Submit(context.Background(), client.Submission{MainURL: "x"})
		var submitErr *client.SubmitError
		require.ErrorAs(t, err, &submitErr)
		assert.Equal(t, 0, submitErr.StatusCode)
	})
}

func TestStatus(t *testing.T) {
	t.Run("returns status string verbatim", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/results/task-123", r.URL.Path)
			_, _ = w.Write([]byte(`{"status": "Keyword Analysis Started"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		status, err := c.Status(context.Background(), "task-123")
		require.NoError(t, err)
		assert.Equal(t, "Keyword Analysis Started", status)
	})

	t.Run("404 yields ErrTaskNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status": "Task not found", "error": "unknown task ID"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.Status(context.Background(), "nope")
		assert.ErrorIs(t, err, client.ErrTaskNotFound)
	})

	t.Run("server error yields StatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.Status(context.Background(), "task-123")

		var statusErr *client.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, "task-123", statusErr.TaskID)
	})

	t.Run("empty task ID is rejected", func(t *testing.T) {
		c := newTestClient(t, "http://localhost:8080")
		_, err := c.Status(context.Background(), "")
		assert.ErrorIs(t, err, client.ErrEmptyTaskID)
	})

	t.Run("task ID is path escaped", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			_, _ = w.Write([]byte(`{"status": "Processing"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.Status(context.Background(), "weird/id")
		require.NoError(t, err)
		assert.Equal(t, "/results/weird%2Fid", gotPath)
	})
}
