package task

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTask is a controllable Task implementation for runner tests.
type testTask struct {
	id       uuid.UUID
	taskType string
	execFn   func(ctx context.Context) error
	executed chan struct{}
	once     sync.Once
}

func newTestTask(execFn func(ctx context.Context) error) *testTask {
	return &testTask{
		id:       uuid.New(),
		taskType: "test_task",
		execFn:   execFn,
		executed: make(chan struct{}),
	}
}

func (t *testTask) ID() uuid.UUID      { return t.id }
func (t *testTask) Type() string       { return t.taskType }
func (t *testTask) Payload() []byte    { return []byte(`{}`) }
func (t *testTask) Status() TaskStatus { return TaskStatusPending }

func (t *testTask) Execute(ctx context.Context) error {
	defer t.once.Do(func() { close(t.executed) })
	if t.execFn != nil {
		return t.execFn(ctx)
	}
	return nil
}

// memoryTaskStore is an in-memory TaskStore for runner tests.
type memoryTaskStore struct {
	mu           sync.Mutex
	saved        []Task
	statuses     map[uuid.UUID]TaskStatus
	errorMsgs    map[uuid.UUID]string
	pending      []Task
	processing   []Task
	saveErr      error
	updateCalled chan uuid.UUID
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{
		statuses:     make(map[uuid.UUID]TaskStatus),
		errorMsgs:    make(map[uuid.UUID]string),
		updateCalled: make(chan uuid.UUID, 32),
	}
}

func (s *memoryTaskStore) SaveTask(ctx context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, task)
	s.statuses[task.ID()] = task.Status()
	return nil
}

func (s *memoryTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	s.statuses[taskID] = status
	s.errorMsgs[taskID] = errorMsg
	s.mu.Unlock()
	s.updateCalled <- taskID
	return nil
}

func (s *memoryTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, nil
}

func (s *memoryTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing, nil
}

func (s *memoryTaskStore) WithTx(tx *sql.Tx) TaskStore { return s }

func (s *memoryTaskStore) statusOf(taskID uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[taskID]
}

func newTestRunner(store TaskStore, cfg TaskRunnerConfig) *TaskRunner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTaskRunner(store, cfg, logger)
}

func waitForStatus(t *testing.T, store *memoryTaskStore, taskID uuid.UUID, want TaskStatus) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if store.statusOf(taskID) == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("task %s never reached status %q (got %q)", taskID, want, store.statusOf(taskID))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestTaskRunnerSubmit(t *testing.T) {
	t.Run("saves task before queueing", func(t *testing.T) {
		store := newMemoryTaskStore()
		runner := newTestRunner(store, TaskRunnerConfig{WorkerCount: 0, QueueSize: 1})

		task := newTestTask(nil)
		err := runner.Submit(context.Background(), task)
		require.NoError(t, err)

		assert.Len(t, store.saved, 1)
		assert.Equal(t, task.ID(), store.saved[0].ID())
	})

	t.Run("returns error when save fails", func(t *testing.T) {
		store := newMemoryTaskStore()
		store.saveErr = errors.New("db unavailable")
		runner := newTestRunner(store, TaskRunnerConfig{WorkerCount: 0, QueueSize: 1})

		err := runner.Submit(context.Background(), newTestTask(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save task")
	})

	t.Run("returns error when queue is full", func(t *testing.T) {
		store := newMemoryTaskStore()
		runner := newTestRunner(store, TaskRunnerConfig{WorkerCount: 0, QueueSize: 1})

		require.NoError(t, runner.Submit(context.Background(), newTestTask(nil)))
		err := runner.Submit(context.Background(), newTestTask(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "queue is full")
	})
}

func TestTaskRunnerProcessing(t *testing.T) {
	t.Run("successful task is marked completed", func(t *testing.T) {
		store := newMemoryTaskStore()
		runner := newTestRunner(store, TaskRunnerConfig{
			WorkerCount:            1,
			QueueSize:              4,
			StuckTaskCheckInterval: time.Hour,
		})
		require.NoError(t, runner.Start())
		defer runner.Stop()

		task := newTestTask(nil)
		require.NoError(t, runner.Submit(context.Background(), task))

		<-task.executed
		waitForStatus(t, store, task.ID(), TaskStatusCompleted)
	})

	t.Run("failed task is marked failed with error message", func(t *testing.T) {
		store := newMemoryTaskStore()
		runner := newTestRunner(store, TaskRunnerConfig{
			WorkerCount:            1,
			QueueSize:              4,
			StuckTaskCheckInterval: time.Hour,
		})

		var handledErr error
		var handledMu sync.Mutex
		runner.SetErrorHandler(func(task Task, err error) {
			handledMu.Lock()
			handledErr = err
			handledMu.Unlock()
		})

		require.NoError(t, runner.Start())
		defer runner.Stop()

		task := newTestTask(func(ctx context.Context) error {
			return errors.New("pipeline exploded")
		})
		require.NoError(t, runner.Submit(context.Background(), task))

		<-task.executed
		waitForStatus(t, store, task.ID(), TaskStatusFailed)

		store.mu.Lock()
		assert.Equal(t, "pipeline exploded", store.errorMsgs[task.ID()])
		store.mu.Unlock()

		handledMu.Lock()
		assert.EqualError(t, handledErr, "pipeline exploded")
		handledMu.Unlock()
	})
}

func TestTaskRunnerRecover(t *testing.T) {
	t.Run("requeues pending and resets processing tasks", func(t *testing.T) {
		store := newMemoryTaskStore()
		pendingTask := newTestTask(nil)
		processingTask := newTestTask(nil)
		store.pending = []Task{pendingTask}
		store.processing = []Task{processingTask}

		runner := newTestRunner(store, TaskRunnerConfig{
			WorkerCount:            1,
			QueueSize:              4,
			StuckTaskCheckInterval: time.Hour,
		})
		require.NoError(t, runner.Start())
		defer runner.Stop()

		<-pendingTask.executed
		<-processingTask.executed

		waitForStatus(t, store, pendingTask.ID(), TaskStatusCompleted)
		waitForStatus(t, store, processingTask.ID(), TaskStatusCompleted)
	})
}
