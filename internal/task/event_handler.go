package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PiyushChall/CogniSynapseRank/internal/events"
)

// Errors returned by the event handler
var (
	ErrNilFactory    = errors.New("task factory cannot be nil")
	ErrNilRunner     = errors.New("task runner cannot be nil")
	ErrNilEvent      = errors.New("event cannot be nil")
	ErrUnhandledType = errors.New("unhandled event type")
)

// TaskFactoryEventHandler listens for task request events and turns them
// into queued tasks. It is the bridge between the service layer, which
// emits events, and the task runner, which executes tasks.
type TaskFactoryEventHandler struct {
	factory *AnalysisTaskFactory
	runner  *TaskRunner
	logger  *slog.Logger
}

// NewTaskFactoryEventHandler creates a handler wired to the given factory and runner.
func NewTaskFactoryEventHandler(
	factory *AnalysisTaskFactory,
	runner *TaskRunner,
	logger *slog.Logger,
) (*TaskFactoryEventHandler, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if runner == nil {
		return nil, ErrNilRunner
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_factory_event_handler"),
	}, nil
}

// HandleEvent processes a task request event by creating the matching task
// and submitting it to the runner. Events with an unrecognized type are
// logged and skipped without error so other handlers can still act on them.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event == nil {
		return ErrNilEvent
	}

	logger := h.logger.With("event_id", event.ID, "event_type", event.Type)

	if event.Type != TaskTypeSEOAnalysis {
		logger.Debug("ignoring event of unhandled type")
		return nil
	}

	var payload struct {
		AnalysisID uuid.UUID `json:"analysis_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		logger.Error("failed to unmarshal event payload", "error", err)
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	if payload.AnalysisID == uuid.Nil {
		logger.Error("event payload missing analysis ID")
		return ErrEmptyAnalysisID
	}

	task, err := h.factory.CreateTask(payload.AnalysisID)
	if err != nil {
		logger.Error("failed to create task from event", "error", err)
		return fmt.Errorf("failed to create task from event: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		logger.Error("failed to submit task to runner",
			"task_id", task.ID(),
			"error", err)
		return fmt.Errorf("failed to submit task to runner: %w", err)
	}

	logger.Info("task submitted from event",
		"task_id", task.ID(),
		"analysis_id", payload.AnalysisID)
	return nil
}
