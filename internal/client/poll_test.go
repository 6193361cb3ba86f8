package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiyushChall/CogniSynapseRank/internal/client"
)

// statusServer serves a scripted sequence of status responses and records
// query times.
type statusServer struct {
	mu         sync.Mutex
	statuses   []string
	index      int
	queryTimes []time.Time
	failCount  int // serve this many 500s before the scripted statuses
}

func (s *statusServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.queryTimes = append(s.queryTimes, time.Now())

		if s.failCount > 0 {
			s.failCount--
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		status := s.statuses[len(s.statuses)-1]
		if s.index < len(s.statuses) {
			status = s.statuses[s.index]
			s.index++
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "` + status + `"}`))
	}
}

func (s *statusServer) queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queryTimes)
}

func newPollFixture(t *testing.T, statuses ...string) (*client.Client, *statusServer) {
	t.Helper()

	srv := &statusServer{statuses: statuses}
	server := httptest.NewServer(srv.handler())
	t.Cleanup(server.Close)

	return newTestClient(t, server.URL), srv
}

func TestPollUntilComplete(t *testing.T) {
	const interval = 10 * time.Millisecond

	t.Run("forwards statuses in order then signals completion once", func(t *testing.T) {
		c, _ := newPollFixture(t, "Queued", "Running", "Analysis Completed")

		var observed []string
		err := c.PollUntilComplete(context.Background(), "task-1", func(status string) {
			observed = append(observed, status)
		}, client.WithInterval(interval))

		require.NoError(t, err)
		assert.Equal(t, []string{"Queued", "Running"}, observed)
	})

	t.Run("stops querying after terminal status", func(t *testing.T) {
		c, srv := newPollFixture(t, "Analysis Completed")

		err := c.PollUntilComplete(context.Background(), "task-1", nil, client.WithInterval(interval))
		require.NoError(t, err)

		queriesAtCompletion := srv.queries()
		time.Sleep(5 * interval)
		assert.Equal(t, queriesAtCompletion, srv.queries(),
			"no further status query may be issued after the terminal status")
		assert.Equal(t, 1, queriesAtCompletion)
	})

	t.Run("first query waits one full interval", func(t *testing.T) {
		c, srv := newPollFixture(t, "Analysis Completed")

		start := time.Now()
		require.NoError(t, c.PollUntilComplete(context.Background(), "task-1", nil,
			client.WithInterval(50*time.Millisecond)))

		srv.mu.Lock()
		firstQuery := srv.queryTimes[0]
		srv.mu.Unlock()
		assert.GreaterOrEqual(t, firstQuery.Sub(start), 50*time.Millisecond)
	})

	t.Run("consecutive queries are separated by at least the interval", func(t *testing.T) {
		c, srv := newPollFixture(t, "Queued", "Running", "Analysis Completed")

		require.NoError(t, c.PollUntilComplete(context.Background(), "task-1", nil,
			client.WithInterval(20*time.Millisecond)))

		srv.mu.Lock()
		defer srv.mu.Unlock()
		require.Len(t, srv.queryTimes, 3)
		for i := 1; i < len(srv.queryTimes); i++ {
			gap := srv.queryTimes[i].Sub(srv.queryTimes[i-1])
			assert.GreaterOrEqual(t, gap, 20*time.Millisecond,
				"gap between queries %d and %d too short", i-1, i)
		}
	})

	t.Run("failure status returns ErrAnalysisFailed", func(t *testing.T) {
		c, _ := newPollFixture(t, "Processing", "Analysis Failed")

		err := c.PollUntilComplete(context.Background(), "task-1", nil, client.WithInterval(interval))
		assert.ErrorIs(t, err, client.ErrAnalysisFailed)
	})

	t.Run("terminal statuses are not forwarded to the callback", func(t *testing.T) {
		c, _ := newPollFixture(t, "Processing", "Analysis Completed")

		var observed []string
		require.NoError(t, c.PollUntilComplete(context.Background(), "task-1", func(status string) {
			observed = append(observed, status)
		}, client.WithInterval(interval)))

		assert.Equal(t, []string{"Processing"}, observed)
	})

	t.Run("query failure surfaces immediately by default", func(t *testing.T) {
		c, srv := newPollFixture(t, "Analysis Completed")
		srv.failCount = 1

		err := c.PollUntilComplete(context.Background(), "task-1", nil, client.WithInterval(interval))
		require.Error(t, err)

		var statusErr *client.StatusError
		assert.ErrorAs(t, err, &statusErr)
	})

	t.Run("failure threshold tolerates consecutive failures", func(t *testing.T) {
		c, srv := newPollFixture(t, "Analysis Completed")
		srv.failCount = 2

		err := c.PollUntilComplete(context.Background(), "task-1", nil,
			client.WithInterval(interval),
			client.WithFailureThreshold(3))
		require.NoError(t, err)
		assert.Equal(t, 3, srv.queries())
	})

	t.Run("failures beyond the threshold surface", func(t *testing.T) {
		c, srv := newPollFixture(t, "Analysis Completed")
		srv.failCount = 5

		err := c.PollUntilComplete(context.Background(), "task-1", nil,
			client.WithInterval(interval),
			client.WithFailureThreshold(3))
		require.Error(t, err)
		assert.Equal(t, 3, srv.queries())
	})

	t.Run("task not found surfaces regardless of threshold", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status": "Task not found"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		err := c.PollUntilComplete(context.Background(), "task-1", nil,
			client.WithInterval(interval),
			client.WithFailureThreshold(5))
		assert.ErrorIs(t, err, client.ErrTaskNotFound)
	})

	t.Run("timeout bounds total polling time", func(t *testing.T) {
		c, _ := newPollFixture(t, "Processing") // never completes

		err := c.PollUntilComplete(context.Background(), "task-1", nil,
			client.WithInterval(interval),
			client.WithTimeout(5*interval))
		assert.ErrorIs(t, err, client.ErrPollTimeout)
	})

	t.Run("max attempts bounds query count", func(t *testing.T) {
		c, srv := newPollFixture(t, "Processing") // never completes

		err := c.PollUntilComplete(context.Background(), "task-1", nil,
			client.WithInterval(interval),
			client.WithMaxAttempts(3))
		assert.ErrorIs(t, err, client.ErrAttemptsExhausted)
		assert.Equal(t, 3, srv.queries())
	})

	t.Run("context cancellation stops the loop cleanly", func(t *testing.T) {
		c, srv := newPollFixture(t, "Processing") // never completes

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(3 * interval)
			cancel()
		}()

		err := c.PollUntilComplete(ctx, "task-1", nil, client.WithInterval(interval))
		assert.ErrorIs(t, err, context.Canceled)

		queriesAtCancel := srv.queries()
		time.Sleep(3 * interval)
		assert.Equal(t, queriesAtCancel, srv.queries())
	})

	t.Run("empty task ID is rejected without queries", func(t *testing.T) {
		c, srv := newPollFixture(t, "Processing")

		err := c.PollUntilComplete(context.Background(), "", nil, client.WithInterval(interval))
		assert.ErrorIs(t, err, client.ErrEmptyTaskID)
		assert.Equal(t, 0, srv.queries())
	})
}
