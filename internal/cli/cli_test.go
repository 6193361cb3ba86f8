package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer implements the submission + polling protocol with a scripted
// status sequence.
type fakeServer struct {
	mu       sync.Mutex
	statuses []string
	index    int
	taskID   string
	notFound bool
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"task_id": "` + f.taskID + `", "message": "Analysis started. Check /results for updates."}`))
	})

	mux.HandleFunc("/results/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if f.notFound {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status": "Task not found", "error": "unknown task ID"}`))
			return
		}

		f.mu.Lock()
		status := f.statuses[len(f.statuses)-1]
		if f.index < len(f.statuses) {
			status = f.statuses[f.index]
			f.index++
		}
		f.mu.Unlock()

		_, _ = w.Write([]byte(`{"status": "` + status + `"}`))
	})

	return mux
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	t.Run("submits and polls until completion", func(t *testing.T) {
		fake := &fakeServer{
			taskID:   "task-42",
			statuses: []string{"Processing", "Keyword Analysis Started", "Analysis Completed"},
		}
		server := httptest.NewServer(fake.handler())
		defer server.Close()

		out, err := runCommand(t,
			"analyze",
			"--url", "https://example.com",
			"--compare", "https://rival.example",
			"--server", server.URL,
			"--interval", "10ms")
		require.NoError(t, err)

		assert.Contains(t, out, "task task-42")
		assert.Contains(t, out, "Processing")
		assert.Contains(t, out, "Keyword Analysis Started")
		assert.Contains(t, out, "Analysis Completed")
	})

	t.Run("reports analysis failure", func(t *testing.T) {
		fake := &fakeServer{
			taskID:   "task-43",
			statuses: []string{"Processing", "Analysis Failed"},
		}
		server := httptest.NewServer(fake.handler())
		defer server.Close()

		_, err := runCommand(t,
			"analyze",
			"--url", "https://example.com",
			"--server", server.URL,
			"--interval", "10ms")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "analysis failed")
	})

	t.Run("honors max attempts", func(t *testing.T) {
		fake := &fakeServer{
			taskID:   "task-44",
			statuses: []string{"Processing"},
		}
		server := httptest.NewServer(fake.handler())
		defer server.Close()

		_, err := runCommand(t,
			"analyze",
			"--url", "https://example.com",
			"--server", server.URL,
			"--interval", "10ms",
			"--max-attempts", "2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gave up waiting")
	})

	t.Run("submission failure surfaces", func(t *testing.T) {
		_, err := runCommand(t,
			"analyze",
			"--url", "https://example.com",
			"--server", "http://127.0.0.1:1",
			"--interval", "10ms",
			"--max-attempts", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "submission failed")
	})
}

func TestStatusCommand(t *testing.T) {
	t.Run("prints the current status", func(t *testing.T) {
		fake := &fakeServer{
			taskID:   "task-45",
			statuses: []string{"Content Analysis Started"},
		}
		server := httptest.NewServer(fake.handler())
		defer server.Close()

		out, err := runCommand(t, "status", "task-45", "--server", server.URL)
		require.NoError(t, err)
		assert.Contains(t, out, "Content Analysis Started")
	})

	t.Run("unknown task exits with error", func(t *testing.T) {
		fake := &fakeServer{notFound: true, taskID: "x", statuses: []string{"x"}}
		server := httptest.NewServer(fake.handler())
		defer server.Close()

		_, err := runCommand(t, "status", "missing-task", "--server", server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
